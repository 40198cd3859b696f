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

// Package lfit implements the lock-free read fast path attached to each
// open PM file: a Cache type, single-writer per open file, whose zero
// value is invalid and that validates a writer epoch counter pair
// around every cached copy instead of taking the vinode's lock.
package lfit

import "github.com/pmemfile-go/pmemfile/internal/pm"

// Threshold bounds how large a read the fast path will serve: reads
// larger than this many bytes must take the locked slow path, bounding
// both the stack-local staging buffer and the cost of a wasted
// lock-free attempt.
const Threshold = 256

// Cache is the per-open-file iterator cache. It is single-writer:
// callers must serialize access to the same Cache under the owning open
// file's mutex, and never share one across concurrent readers of the
// same fd.
type Cache struct {
	block             *pm.Block
	lastPre, lastPost uint64

	// address holds the PM-resident staging address for the cursor, or
	// is nil when the cache promises zeroes (a sparse gap before the next
	// initialized block, or past the last initialized block but before
	// EOF).
	address []byte
	length  int64

	valid bool
}

// Invalidate implements lfit_invalidate: marks the cache unusable so the
// next TryRead call declines and falls back to the locked slow path.
func (c *Cache) Invalidate() {
	c.valid = false
	c.length = 0
	c.block = nil
	c.address = nil
}

// Setup re-seeds the cache after a read or write. Callers must hold
// vinode.Lock so that no writer runs concurrently (the read side is
// enough); block is the block returned by the just-completed
// range iteration for offset, or nil; offset is the post-operation file
// cursor.
func (c *Cache) Setup(vinode *pm.Vinode, block *pm.Block, offset, fileSize int64) {
	if offset >= fileSize {
		c.Invalidate()
		return
	}

	c.lastPre = vinode.PreWrite()
	c.lastPost = vinode.PostWrite()
	c.block = block
	c.valid = true

	if !block.Contains(offset) || !block.Initialized() {
		searchFrom := block
		switch {
		case block == nil:
			searchFrom = vinode.FirstBlock()
		case !block.Contains(offset):
			// block lies entirely before offset (IterateRange handed us
			// the sparse gap's predecessor, not a block covering the
			// cursor): it cannot itself be the next initialized block
			// at-or-after offset, so the search must skip past it.
			searchFrom = block.Next
		}

		next := pm.FirstInitializedFrom(searchFrom)
		c.address = nil
		if next != nil && next.Offset < fileSize {
			c.length = next.Offset - offset
		} else {
			c.length = fileSize - offset
		}
		if c.length < 0 {
			c.length = 0
		}
		return
	}

	offsetInBlock := offset - block.Offset
	c.address = block.Data[offsetInBlock:]
	c.length = block.Size - offsetInBlock
}

// notTaken is the sentinel result of TryRead meaning "fall back to the
// locked slow path". It is not a user-visible error.
const notTaken = false

// TryRead attempts a lock-free read using the cache, returning (n, true)
// on success or (0, false) to signal the caller must retry under the
// vinode's lock. The caller must hold the per-open-file lock but must
// NOT hold the vinode's reader/writer lock.
func (c *Cache) TryRead(vinode *pm.Vinode, buf []byte) (int, bool) {
	n := len(buf)
	if n == 0 {
		return 0, true
	}
	if !c.valid || c.length == 0 {
		return 0, notTaken
	}
	if c.lastPre != vinode.PreWrite() || c.lastPost != vinode.PostWrite() {
		return 0, notTaken
	}
	if int64(n) > c.length {
		return 0, notTaken
	}

	if c.address == nil {
		for i := range buf {
			buf[i] = 0
		}
	} else if n <= Threshold {
		var staging [Threshold]byte
		copy(staging[:n], c.address[:n])

		// Re-check the counters before the staged bytes are ever
		// delivered to the caller's buffer. Without this second check a
		// concurrent writer could retire the underlying block between
		// the copy above and delivery, and the caller would observe a
		// torn read.
		if c.lastPre != vinode.PreWrite() || c.lastPost != vinode.PostWrite() {
			return 0, notTaken
		}

		copy(buf, staging[:n])
		c.address = c.address[n:]
	} else {
		return 0, notTaken
	}

	c.length -= int64(n)
	return n, true
}
