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
	"testing"

	"github.com/pmemfile-go/pmemfile/internal/cfgx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopHandleDoesNotPanic(t *testing.T) {
	h := NewNoop()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		h.RingExhaustion(ctx)
		h.TableOccupancy(ctx, 3)
		h.CWDExchange(ctx, true)
		h.FastPathAccept(ctx, 128)
		h.FastPathDecline(ctx, DeclineStale)
	})
}

func TestNewReturnsNoopWhenNothingConfigured(t *testing.T) {
	h, promHandler, shutdown, err := New(cfgx.MetricsConfig{PrometheusPort: 0, EnableOTel: false})

	require.NoError(t, err)
	assert.Nil(t, promHandler)
	assert.IsType(t, noopHandle{}, h)
	assert.NoError(t, shutdown(context.Background()))
}

func TestOCMetricsRegisterOnce(t *testing.T) {
	h1, exporter1, err := NewOC()
	require.NoError(t, err)
	assert.NotNil(t, exporter1)

	h2, exporter2, err := NewOC()
	require.NoError(t, err)
	assert.NotNil(t, exporter2)

	assert.Same(t, h1, h2, "initOCMetrics must run exactly once; the global view registration would error on a second view.Register call")
}
