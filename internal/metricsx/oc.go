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

package metricsx

import (
	"context"
	"sync"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"

	"github.com/pmemfile-go/pmemfile/internal/loggerx"
)

var ocOnce sync.Once

// ocHandle implements Handle on top of OpenCensus stats/views, exported
// to Prometheus via contrib.go.opencensus.io/exporter/prometheus — the
// same registration-once-globally pattern as common.ocMetrics, since
// OpenCensus measures are process-global.
type ocHandle struct {
	ringExhaustionCount *stats.Int64Measure
	tableOccupancy      *stats.Int64Measure
	cwdExchangeCount    *stats.Int64Measure
	fastPathAcceptCount *stats.Int64Measure
	fastPathAcceptBytes *stats.Int64Measure
	fastPathDecline     *stats.Int64Measure
}

var (
	ocMetric    *ocHandle
	ocInitError error
)

// NewOC builds the process-global OpenCensus Handle and returns a
// Prometheus http.Handler exposing it at /metrics. The measures and views
// are registered exactly once; every call creates a new Prometheus
// exporter and registers it as an OpenCensus view exporter.
func NewOC() (Handle, *prometheus.Exporter, error) {
	ocOnce.Do(func() {
		ocMetric, ocInitError = initOCMetrics()
	})
	if ocInitError != nil {
		return nil, nil, ocInitError
	}

	exporter, err := prometheus.NewExporter(prometheus.Options{Namespace: "pmemfile"})
	if err != nil {
		return nil, nil, err
	}
	view.RegisterExporter(exporter)

	return ocMetric, exporter, nil
}

func initOCMetrics() (*ocHandle, error) {
	ringExhaustionCount := stats.Int64("vfd/ring_exhaustion_count", "Number of times the free-slot ring had nothing to hand out.", stats.UnitDimensionless)
	tableOccupancy := stats.Int64("vfd/table_occupancy", "Live entry count in the virtual file descriptor table.", stats.UnitDimensionless)
	cwdExchangeCount := stats.Int64("vfd/cwd_exchange_count", "Number of CWD-anchor swaps.", stats.UnitDimensionless)
	fastPathAcceptCount := stats.Int64("lfit/fast_path_accept_count", "Number of reads served by the lock-free fast path.", stats.UnitDimensionless)
	fastPathAcceptBytes := stats.Int64("lfit/fast_path_accept_bytes", "Bytes served by the lock-free fast path.", stats.UnitBytes)
	fastPathDecline := stats.Int64("lfit/fast_path_decline_count", "Number of reads that fell back to the locked slow path.", stats.UnitDimensionless)

	if err := view.Register(
		&view.View{Name: "vfd/ring_exhaustion_count", Measure: ringExhaustionCount, Aggregation: view.Count()},
		&view.View{Name: "vfd/table_occupancy", Measure: tableOccupancy, Aggregation: view.LastValue()},
		&view.View{Name: "vfd/cwd_exchange_count", Measure: cwdExchangeCount, Aggregation: view.Count(),
			TagKeys: []tag.Key{tag.MustNewKey(cwdViaKey)}},
		&view.View{Name: "lfit/fast_path_accept_count", Measure: fastPathAcceptCount, Aggregation: view.Count()},
		&view.View{Name: "lfit/fast_path_accept_bytes", Measure: fastPathAcceptBytes, Aggregation: view.Sum()},
		&view.View{Name: "lfit/fast_path_decline_count", Measure: fastPathDecline, Aggregation: view.Count(),
			TagKeys: []tag.Key{tag.MustNewKey(declineReasonKey)}},
	); err != nil {
		return nil, err
	}

	return &ocHandle{
		ringExhaustionCount: ringExhaustionCount,
		tableOccupancy:      tableOccupancy,
		cwdExchangeCount:    cwdExchangeCount,
		fastPathAcceptCount: fastPathAcceptCount,
		fastPathAcceptBytes: fastPathAcceptBytes,
		fastPathDecline:     fastPathDecline,
	}, nil
}

func (h *ocHandle) record(ctx context.Context, m *stats.Int64Measure, inc int64, mutators []tag.Mutator, what string) {
	if err := stats.RecordWithTags(ctx, mutators, m.M(inc)); err != nil {
		loggerx.Errorf("metricsx: cannot record %s: %v", what, err)
	}
}

func (h *ocHandle) RingExhaustion(ctx context.Context) {
	h.record(ctx, h.ringExhaustionCount, 1, nil, "ring exhaustion count")
}

func (h *ocHandle) TableOccupancy(ctx context.Context, occupied int64) {
	h.record(ctx, h.tableOccupancy, occupied, nil, "table occupancy")
}

func (h *ocHandle) CWDExchange(ctx context.Context, viaFchdir bool) {
	via := "chdir"
	if viaFchdir {
		via = "fchdir"
	}
	h.record(ctx, h.cwdExchangeCount, 1, []tag.Mutator{tag.Upsert(tag.MustNewKey(cwdViaKey), via)}, "cwd exchange count")
}

func (h *ocHandle) FastPathAccept(ctx context.Context, bytes int64) {
	h.record(ctx, h.fastPathAcceptCount, 1, nil, "fast path accept count")
	h.record(ctx, h.fastPathAcceptBytes, bytes, nil, "fast path accept bytes")
}

func (h *ocHandle) FastPathDecline(ctx context.Context, reason DeclineReason) {
	h.record(ctx, h.fastPathDecline, 1, []tag.Mutator{tag.Upsert(tag.MustNewKey(declineReasonKey), string(reason))}, "fast path decline count")
}

var _ Handle = (*ocHandle)(nil)
