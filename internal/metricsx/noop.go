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

import "context"

// NewNoop returns a Handle that discards every measurement, mirroring
// common.NewNoopMetrics — the default when metrics.enable-otel is false
// and metrics.prometheus-port is 0.
func NewNoop() Handle { return noopHandle{} }

type noopHandle struct{}

func (noopHandle) RingExhaustion(context.Context)                 {}
func (noopHandle) TableOccupancy(context.Context, int64)          {}
func (noopHandle) CWDExchange(context.Context, bool)              {}
func (noopHandle) FastPathAccept(context.Context, int64)          {}
func (noopHandle) FastPathDecline(context.Context, DeclineReason) {}
