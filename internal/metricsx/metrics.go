// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metricsx instruments the virtual file-descriptor table and
// the lock-free read path: a narrow Handle interface with a no-op
// implementation, an OpenTelemetry-backed implementation, and an
// OpenCensus/Prometheus-backed implementation wired side by side so an
// operator can pick either exporter (or both) without touching call
// sites. Grounded on the same
// MetricHandle split and common/otel_metrics.go's attribute-set caching,
// scoped down to the metrics SPEC_FULL.md names: ring exhaustion,
// fast-path accept/decline/torn-retry, table occupancy, CWD exchanges.
package metricsx

import "context"

// DeclineReason classifies why TryRead fell back to the locked slow
// path, mirroring common's FSOpsErrorCategory attribute-grouping idea
// applied to lock-free-iterator outcomes instead of filesystem errors.
type DeclineReason string

const (
	DeclineStale     DeclineReason = "stale_epoch"
	DeclineTornRetry DeclineReason = "torn_retry"
	DeclineTooLarge  DeclineReason = "too_large"
	DeclineInvalid   DeclineReason = "invalid_cache"
)

// Handle is the narrow metrics surface internal/vfd and internal/lfit
// call into, the same shape as common.MetricHandle: a small set of
// counters/latencies callers increment inline, with attribute
// cardinality kept low by constraining taggable values to named enums.
type Handle interface {
	// RingExhaustion records that the free-slot ring had no entry to
	// hand out and the table construction's onExhaustion callback fired.
	RingExhaustion(ctx context.Context)

	// TableOccupancy records the table's live-entry count immediately
	// after an Assign or Close.
	TableOccupancy(ctx context.Context, occupied int64)

	// CWDExchange records a chdir_pm/chdir_kernel/fchdir call installing
	// a new CWD anchor.
	CWDExchange(ctx context.Context, viaFchdir bool)

	// FastPathAccept records a TryRead that returned bytes without
	// taking the vinode lock.
	FastPathAccept(ctx context.Context, bytes int64)

	// FastPathDecline records a TryRead that fell back to the slow path,
	// tagged with why.
	FastPathDecline(ctx context.Context, reason DeclineReason)
}
