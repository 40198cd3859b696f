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

package vfd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingAcquirePublishRoundTrip(t *testing.T) {
	r := newFreeSlotRing(4, nil)

	e := r.acquire()
	assert.Equal(t, int32(0), e.refCount.Load())

	e.refCount.Store(1)
	e.refCount.Store(0)
	r.publish(e)
}

func TestRingPublishOfLiveEntryPanics(t *testing.T) {
	r := newFreeSlotRing(4, nil)
	e := &entry{}
	e.refCount.Store(1)

	assert.Panics(t, func() { r.publish(e) })
}

func TestRingAcquireExhaustionInvokesCallbackThenPanics(t *testing.T) {
	var called int
	r := newFreeSlotRing(1, func() { called++ })

	// Drain every preallocated slot without publishing any back: 2*1 = 2
	// slots total.
	first := r.acquire()
	first.refCount.Store(1)
	second := r.acquire()
	second.refCount.Store(1)

	assert.Panics(t, func() { r.acquire() })
	assert.Equal(t, 1, called)
}
