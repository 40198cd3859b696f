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

	"github.com/stretchr/testify/mock"
)

// MockHandle is a testify/mock.Mock-backed Handle for exercising
// internal/vfd and internal/lfit call sites in tests without a real
// exporter, the same shape as common.MockMetricHandle.
type MockHandle struct {
	mock.Mock
}

func (m *MockHandle) RingExhaustion(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockHandle) TableOccupancy(ctx context.Context, occupied int64) {
	m.Called(ctx, occupied)
}

func (m *MockHandle) CWDExchange(ctx context.Context, viaFchdir bool) {
	m.Called(ctx, viaFchdir)
}

func (m *MockHandle) FastPathAccept(ctx context.Context, bytes int64) {
	m.Called(ctx, bytes)
}

func (m *MockHandle) FastPathDecline(ctx context.Context, reason DeclineReason) {
	m.Called(ctx, reason)
}

var _ Handle = (*MockHandle)(nil)
