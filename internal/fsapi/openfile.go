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

// Package fsapi wires the virtual file-descriptor table (internal/vfd)
// and the lock-free read fast path (internal/lfit) together into the
// POSIX-shaped surface a syscall interception layer would call into: a
// mutex-guarded open-file object with a cursor, the PM equivalent of a
// regular file description.
package fsapi

import (
	"sync"
	"syscall"

	"github.com/pmemfile-go/pmemfile/common"
	"github.com/pmemfile-go/pmemfile/internal/lfit"
	"github.com/pmemfile-go/pmemfile/internal/pm"
)

// OpenFile is a PM open-file object: it pairs a vinode with the cursor
// and lock-free iterator cache attached to each open PM file. A single
// OpenFile is shared by every vfd that dup/dup2 created from the same
// Assign/open call, exactly as POSIX shares one open file description's
// cursor across dup'd descriptors — the vfd layer dups the *entry (and
// therefore this pointer), not the OpenFile itself.
type OpenFile struct {
	vinode *pm.Vinode

	// mu guards offset and cache. The iterator cache is single-writer,
	// accessed only while holding this lock; it is never touched
	// concurrently by two threads for the same open file.
	mu     sync.Mutex
	offset int64
	cache  lfit.Cache

	// pattern classifies this file's read ranges as sequential or
	// random; a file under sustained random access rarely keeps the
	// fast-path cache valid from one Read to the next, so AccessPattern()
	// is a diagnostic signal, not a gate.
	pattern *common.ReadPatternVisualizer
}

// NewOpenFile wraps vinode as a freshly opened PM file, cursor at 0.
func NewOpenFile(vinode *pm.Vinode) *OpenFile {
	return &OpenFile{vinode: vinode, pattern: common.NewReadPatternVisualizer()}
}

// Vinode implements pm.File.
func (f *OpenFile) Vinode() *pm.Vinode { return f.vinode }

// AccessPattern reports whether the reads served so far look
// sequential or random, for debug logging gated on cfgx.DebugConfig.
func (f *OpenFile) AccessPattern() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pattern.Classification()
}

// Close implements pm.File. OpenFile itself owns no resources beyond the
// vinode it does not own, so Close is a no-op; real deployments would
// plug in release-on-last-close bookkeeping here.
func (f *OpenFile) Close() error { return nil }

// Read first attempts the lock-free fast path, and only on decline
// takes the vinode's read-write lock for a slow-path read, which also
// re-seeds the cache for next time.
func (f *OpenFile) Read(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	start := f.offset
	if n, ok := f.cache.TryRead(f.vinode, buf); ok {
		f.offset += int64(n)
		f.pattern.AcceptRange(start, f.offset)
		return n, nil
	}

	f.vinode.Lock.RLock()
	n := pm.ReadAt(f.vinode, buf, f.offset)
	size := f.vinode.Size()
	block := pm.IterateRange(f.vinode, f.offset+int64(n))
	f.cache.Setup(f.vinode, block, f.offset+int64(n), size)
	f.vinode.Lock.RUnlock()

	f.offset += int64(n)
	f.pattern.AcceptRange(start, f.offset)

	return n, nil
}

// Write implements the write side: it mutates the vinode under the
// writer-notifier bracket (via pm.WriteAt), then re-seeds the cache —
// Setup must only ever run with a block freshly returned by the
// write/read that just happened.
func (f *OpenFile) Write(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pm.WriteAt(f.vinode, buf, f.offset)
	f.offset += int64(len(buf))

	f.vinode.Lock.RLock()
	block := pm.IterateRange(f.vinode, f.offset)
	size := f.vinode.Size()
	f.cache.Setup(f.vinode, block, f.offset, size)
	f.vinode.Lock.RUnlock()

	return len(buf), nil
}

// Seek repositions the cursor and invalidates the cache: a seek makes
// the cached block/address stale regardless of whether the vinode
// changed, since the cache is keyed to the cursor's block, not to an
// absolute offset table.
func (f *OpenFile) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var newOffset int64
	switch whence {
	case 0: // SEEK_SET
		newOffset = offset
	case 1: // SEEK_CUR
		newOffset = f.offset + offset
	case 2: // SEEK_END
		f.vinode.Lock.RLock()
		size := f.vinode.Size()
		f.vinode.Lock.RUnlock()
		newOffset = size + offset
	default:
		return 0, syscall.EINVAL
	}
	if newOffset < 0 {
		return 0, syscall.EINVAL
	}

	f.offset = newOffset
	f.cache.Invalidate()
	return f.offset, nil
}

var _ pm.File = (*OpenFile)(nil)
