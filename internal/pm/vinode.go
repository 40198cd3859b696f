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

package pm

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jacobsa/timeutil"
)

// Vinode is the virtual inode backing a PM file: a block list head, a
// reader/writer lock, and the pre/post write epoch pair the lock-free
// read fast path is built around. Publishing a generation number so
// lock-free readers can detect staleness is split into a before/after
// pair so a concurrent reader can also detect an in-flight (not yet
// committed) write.
type Vinode struct {
	Lock sync.RWMutex

	firstBlock atomic.Pointer[Block]

	// preWriteCounter and postWriteCounter are only ever mutated while
	// Lock is held for writing, with release ordering into the atomic
	// store; they are read without Lock by the fast path using acquire
	// ordering. At any quiescent moment pre == post; pre > post
	// indicates an in-flight writer.
	preWriteCounter  atomic.Uint64
	postWriteCounter atomic.Uint64

	size atomic.Int64

	clock   timeutil.Clock
	modTime atomic.Pointer[time.Time]
}

// NewVinode returns an empty vinode of the given file size, stamped with
// the current time as reported by timeutil.RealClock().
func NewVinode(size int64) *Vinode {
	return NewVinodeWithClock(size, timeutil.RealClock())
}

// NewVinodeWithClock is NewVinode with an injectable clock, for
// deterministic mtime assertions in tests.
func NewVinodeWithClock(size int64, clock timeutil.Clock) *Vinode {
	v := &Vinode{clock: clock}
	v.size.Store(size)
	now := clock.Now()
	v.modTime.Store(&now)
	return v
}

// FirstBlock returns the head of the block list.
func (v *Vinode) FirstBlock() *Block {
	return v.firstBlock.Load()
}

// SetFirstBlock replaces the head of the block list. Callers must hold
// Lock for writing.
func (v *Vinode) SetFirstBlock(b *Block) {
	v.firstBlock.Store(b)
}

// Size returns the current file size.
func (v *Vinode) Size() int64 {
	return v.size.Load()
}

// SetSize updates the file size. Callers must hold Lock for writing.
func (v *Vinode) SetSize(n int64) {
	v.size.Store(n)
}

// PreWrite returns the current pre-write epoch.
func (v *Vinode) PreWrite() uint64 { return v.preWriteCounter.Load() }

// PostWrite returns the current post-write epoch.
func (v *Vinode) PostWrite() uint64 { return v.postWriteCounter.Load() }

// BeginWrite implements the writer-notifier contract: increment
// PreWrite before any mutation becomes visible. Callers must hold Lock
// for writing for the duration between BeginWrite and EndWrite.
func (v *Vinode) BeginWrite() {
	v.preWriteCounter.Add(1)
}

// EndWrite increments PostWrite after the mutation is complete,
// re-establishing pre == post. Must be called with Lock still held for
// writing.
func (v *Vinode) EndWrite() {
	now := v.clock.Now()
	v.modTime.Store(&now)
	v.postWriteCounter.Add(1)
}

// ModTime returns the time of the last completed write.
func (v *Vinode) ModTime() time.Time {
	return *v.modTime.Load()
}

// WithWrite runs fn under Lock, bracketed by BeginWrite/EndWrite, as any
// code path mutating the block graph or initialized byte ranges must.
func (v *Vinode) WithWrite(fn func()) {
	v.Lock.Lock()
	defer v.Lock.Unlock()
	v.BeginWrite()
	defer v.EndWrite()
	fn()
}
