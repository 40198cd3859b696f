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
	"net/http"

	"github.com/pmemfile-go/pmemfile/common"
	"github.com/pmemfile-go/pmemfile/internal/cfgx"
)

// multiHandle fans every measurement out to several Handles, mirroring
// common.JoinShutdownFunc's "combine several into one" shape applied to
// metric recording instead of shutdown.
type multiHandle struct {
	handles []Handle
}

func (m multiHandle) RingExhaustion(ctx context.Context) {
	for _, h := range m.handles {
		h.RingExhaustion(ctx)
	}
}

func (m multiHandle) TableOccupancy(ctx context.Context, occupied int64) {
	for _, h := range m.handles {
		h.TableOccupancy(ctx, occupied)
	}
}

func (m multiHandle) CWDExchange(ctx context.Context, viaFchdir bool) {
	for _, h := range m.handles {
		h.CWDExchange(ctx, viaFchdir)
	}
}

func (m multiHandle) FastPathAccept(ctx context.Context, bytes int64) {
	for _, h := range m.handles {
		h.FastPathAccept(ctx, bytes)
	}
}

func (m multiHandle) FastPathDecline(ctx context.Context, reason DeclineReason) {
	for _, h := range m.handles {
		h.FastPathDecline(ctx, reason)
	}
}

var _ Handle = multiHandle{}

// New builds the Handle described by cfg.Metrics: OpenCensus/Prometheus
// whenever PrometheusPort is nonzero, OpenTelemetry additionally when
// EnableOTel is set, falling back to NewNoop when neither is configured.
// When Prometheus is enabled it also returns the http.Handler to mount
// at /metrics; callers should serve it on cfg.Metrics.PrometheusPort. The
// returned ShutdownFn tears down whatever OTel SDK providers EnableOTel
// caused New to install; it is a no-op when OTel wasn't enabled.
func New(cfg cfgx.MetricsConfig) (Handle, http.Handler, common.ShutdownFn, error) {
	var handles []Handle
	var promHandler http.Handler
	shutdown := common.ShutdownFn(func(context.Context) error { return nil })

	if cfg.PrometheusPort != 0 {
		h, exporter, err := NewOC()
		if err != nil {
			return nil, nil, nil, err
		}
		handles = append(handles, h)
		promHandler = exporter
	}

	if cfg.EnableOTel {
		otelShutdown, err := bootstrapOTel()
		if err != nil {
			return nil, nil, nil, err
		}
		shutdown = otelShutdown

		h, err := NewOTel()
		if err != nil {
			return nil, nil, nil, err
		}
		handles = append(handles, h)
	}

	if len(handles) == 0 {
		return NewNoop(), nil, shutdown, nil
	}
	if len(handles) == 1 {
		return handles[0], promHandler, shutdown, nil
	}
	return multiHandle{handles: handles}, promHandler, shutdown, nil
}
