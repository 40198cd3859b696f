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
	"sync/atomic"

	"github.com/pmemfile-go/pmemfile/internal/pm"
)

// entry is the shared VFD-entry record: it associates either a (pool,
// file) pair or a CWD kernel-fd anchor with an atomic reference count.
// Exactly one of (pool/file != nil) or isCWDAnchor holds, except for a
// freshly recycled slot awaiting reinitialization.
type entry struct {
	pool        pm.Pool
	file        pm.File
	kernelCWDFd int
	isCWDAnchor bool
	refCount    atomic.Int32
}

// resetPM reinitializes a ring-fetched entry as a PM-backed cell, ref
// count starting at 1.
func (e *entry) resetPM(pool pm.Pool, file pm.File) {
	e.pool = pool
	e.file = file
	e.kernelCWDFd = -1
	e.isCWDAnchor = false
	e.refCount.Store(1)
}

// resetCWD reinitializes a ring-fetched entry as a CWD anchor pinning a
// kernel directory fd.
func (e *entry) resetCWD(kernelFd int) {
	e.pool = nil
	e.file = nil
	e.kernelCWDFd = kernelFd
	e.isCWDAnchor = true
	e.refCount.Store(1)
}

// incref increments the reference count with release-acquire ordering.
func (e *entry) incref() {
	e.refCount.Add(1)
}

// decref decrements the reference count and, if it reaches zero,
// destroys the entry: closes the underlying kernel fd or PM file, then
// returns the entry to ring.
func (e *entry) decref(sc Syscaller, ring *freeSlotRing) error {
	if e.refCount.Add(-1) != 0 {
		return nil
	}

	var err error
	if e.isCWDAnchor {
		err = sc.Close(e.kernelCWDFd)
	} else if e.file != nil {
		err = e.file.Close()
	}

	e.pool = nil
	e.file = nil
	e.kernelCWDFd = -1
	e.isCWDAnchor = false

	ring.publish(e)
	return err
}
