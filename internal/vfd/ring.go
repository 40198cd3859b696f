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

import "sync"

// freeSlotRing is the bounded pool of preallocated *entry records. It is
// sized at 2×capacity of the owning table so that an acquire can never
// collide with a just-published entry even under maximum churn.
//
// The container shape — a FIFO with O(1) push/pop — is the same as
// common.Queue (common/queue.go), but unlike that package's unsynchronized
// linked-list implementation this ring is guarded by its own mutex and is
// a fixed preallocated array
// indexed by two counters: entries are never freed to the general heap,
// they are statically pre-allocated at startup, and a linked list would
// reintroduce exactly the per-op allocation the ring exists to avoid.
type freeSlotRing struct {
	mu           sync.Mutex
	slots        []*entry
	insertIndex  int
	fetchIndex   int
	onExhaustion func()
}

// newFreeSlotRing builds a ring of 2*capacity slots, pre-populated with
// freshly allocated, zero-refcount entries. onExhaustion, if non-nil, is
// invoked (for metrics observability) immediately before acquire panics
// on the underlying invariant violation.
func newFreeSlotRing(capacity int, onExhaustion func()) *freeSlotRing {
	r := &freeSlotRing{
		slots:        make([]*entry, 2*capacity),
		onExhaustion: onExhaustion,
	}
	for i := range r.slots {
		r.slots[i] = &entry{}
	}
	return r
}

// publish places an already-zero-refcount entry back into the ring.
// Requires entry.refCount == 0; this is an internal invariant, not a
// user-facing error.
func (r *freeSlotRing) publish(e *entry) {
	if e.refCount.Load() != 0 {
		panic("vfd: publish of entry with nonzero refcount")
	}

	r.mu.Lock()
	r.slots[r.insertIndex] = e
	r.insertIndex = (r.insertIndex + 1) % len(r.slots)
	r.mu.Unlock()
}

// acquire returns the next entry from the ring. The ring's 2x sizing
// makes this unconditional: a correctly operating table can never drain
// it faster than entries are published back.
func (r *freeSlotRing) acquire() *entry {
	r.mu.Lock()
	e := r.slots[r.fetchIndex]
	r.fetchIndex = (r.fetchIndex + 1) % len(r.slots)
	r.mu.Unlock()

	if e.refCount.Load() != 0 {
		if r.onExhaustion != nil {
			r.onExhaustion()
		}
		panic("vfd: ring exhaustion invariant violated: fetched live entry")
	}
	return e
}
