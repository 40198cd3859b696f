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

// Package pm models the persistent-memory primitives the virtual
// file-descriptor table and the lock-free read path sit on top of but
// do not themselves define: the inode block list, the vinode epoch
// counters, and the PM pool/open-file handles. The block list is a
// singly linked, offset-ordered list of byte ranges guarded by a
// monotonic write epoch, tracking local mutations the same way a
// mutable-object proxy tracks writes against a backing object
// generation.
package pm

// BlockFlags are bits describing a Block's state.
type BlockFlags uint32

// Initialized marks a block whose Data holds user-written bytes. A block
// without this flag reads as zero for its entire range.
const Initialized BlockFlags = 1 << 0

// Block is a contiguous byte range of an inode's content, resolved to a
// PM-resident address. Block ranges are non-overlapping and kept in
// ascending Offset order via Next.
type Block struct {
	Offset int64
	Size   int64
	Data   []byte
	Flags  BlockFlags
	Next   *Block
}

// Initialized reports whether b carries user-written data.
func (b *Block) Initialized() bool {
	return b != nil && b.Flags&Initialized != 0
}

// Contains reports whether offset falls within b's range.
func (b *Block) Contains(offset int64) bool {
	return b != nil && b.Offset <= offset && offset < b.Offset+b.Size
}

// FirstInitializedFrom walks the list starting at block looking for the
// first initialized block at or after block, returning nil if none
// exists. It returns block itself when it is already initialized, so
// callers must pass a starting point whose own Offset is already known
// to be at or after the position they care about — passing a block that
// lies strictly before that position (but happens to be initialized)
// would incorrectly report itself as the answer.
func FirstInitializedFrom(block *Block) *Block {
	for block != nil && !block.Initialized() {
		block = block.Next
	}
	return block
}
