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
	"errors"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	declineReasonKey = "decline_reason"
	cwdViaKey        = "via"
)

var (
	vfdMeter  = otel.Meter("pmemfile/vfd")
	lfitMeter = otel.Meter("pmemfile/lfit")

	declineAttrSets sync.Map
	cwdAttrSets     sync.Map
)

func declineAttrSet(reason DeclineReason) metric.MeasurementOption {
	if v, ok := declineAttrSets.Load(reason); ok {
		return v.(metric.MeasurementOption)
	}
	opt := metric.WithAttributeSet(attribute.NewSet(attribute.String(declineReasonKey, string(reason))))
	v, _ := declineAttrSets.LoadOrStore(reason, opt)
	return v.(metric.MeasurementOption)
}

func cwdAttrSet(viaFchdir bool) metric.MeasurementOption {
	if v, ok := cwdAttrSets.Load(viaFchdir); ok {
		return v.(metric.MeasurementOption)
	}
	via := "chdir"
	if viaFchdir {
		via = "fchdir"
	}
	opt := metric.WithAttributeSet(attribute.NewSet(attribute.String(cwdViaKey, via)))
	v, _ := cwdAttrSets.LoadOrStore(viaFchdir, opt)
	return v.(metric.MeasurementOption)
}

// otelHandle implements Handle against an OpenTelemetry meter provider,
// following the same counter/histogram/observable-gauge split as
// common.otelMetrics.
type otelHandle struct {
	ringExhaustionCount  metric.Int64Counter
	tableOccupancy       *atomic.Int64
	cwdExchangeCount     metric.Int64Counter
	fastPathAcceptCount  metric.Int64Counter
	fastPathAcceptBytes  metric.Int64Counter
	fastPathDeclineCount metric.Int64Counter
}

// NewOTel builds an OpenTelemetry-backed Handle, registering every
// instrument against the global meter provider. Callers install a real
// provider (via go.opentelemetry.io/otel.SetMeterProvider) before this
// runs; otherwise measurements are recorded against OTel's no-op default.
func NewOTel() (Handle, error) {
	ringExhaustionCount, err1 := vfdMeter.Int64Counter("vfd/ring_exhaustion_count",
		metric.WithDescription("Number of times the free-slot ring had nothing to hand out."))
	cwdExchangeCount, err2 := vfdMeter.Int64Counter("vfd/cwd_exchange_count",
		metric.WithDescription("Number of chdir_pm/chdir_kernel/fchdir CWD-anchor swaps."))
	fastPathAcceptCount, err3 := lfitMeter.Int64Counter("lfit/fast_path_accept_count",
		metric.WithDescription("Number of reads served by the lock-free fast path."))
	fastPathAcceptBytes, err4 := lfitMeter.Int64Counter("lfit/fast_path_accept_bytes",
		metric.WithDescription("Bytes served by the lock-free fast path."), metric.WithUnit("By"))
	fastPathDeclineCount, err5 := lfitMeter.Int64Counter("lfit/fast_path_decline_count",
		metric.WithDescription("Number of reads that fell back to the locked slow path, by reason."))

	var tableOccupancy atomic.Int64
	_, err6 := vfdMeter.Int64ObservableGauge("vfd/table_occupancy",
		metric.WithDescription("Live entry count in the virtual file descriptor table."),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			obsrv.Observe(tableOccupancy.Load())
			return nil
		}))

	if err := errors.Join(err1, err2, err3, err4, err5, err6); err != nil {
		return nil, err
	}

	return &otelHandle{
		ringExhaustionCount:  ringExhaustionCount,
		tableOccupancy:       &tableOccupancy,
		cwdExchangeCount:     cwdExchangeCount,
		fastPathAcceptCount:  fastPathAcceptCount,
		fastPathAcceptBytes:  fastPathAcceptBytes,
		fastPathDeclineCount: fastPathDeclineCount,
	}, nil
}

func (h *otelHandle) RingExhaustion(ctx context.Context) {
	h.ringExhaustionCount.Add(ctx, 1)
}

func (h *otelHandle) TableOccupancy(_ context.Context, occupied int64) {
	h.tableOccupancy.Store(occupied)
}

func (h *otelHandle) CWDExchange(ctx context.Context, viaFchdir bool) {
	h.cwdExchangeCount.Add(ctx, 1, cwdAttrSet(viaFchdir))
}

func (h *otelHandle) FastPathAccept(ctx context.Context, bytes int64) {
	h.fastPathAcceptCount.Add(ctx, 1)
	h.fastPathAcceptBytes.Add(ctx, bytes)
}

func (h *otelHandle) FastPathDecline(ctx context.Context, reason DeclineReason) {
	h.fastPathDeclineCount.Add(ctx, 1, declineAttrSet(reason))
}

var _ Handle = (*otelHandle)(nil)
