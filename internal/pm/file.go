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

// This file stands in for the real PM block allocator and on-media
// layout, which live outside this module. A minimal, correct allocator
// is supplied here — reads and writes against a real PM block allocator
// are indistinguishable from this one at the pm.Block/pm.Vinode
// interface the virtual file-descriptor table and lock-free iterator
// are built against — so that both have something to exercise end to
// end: ensure backing storage, mutate under a dirty bracket, serve the
// read.

// WriteAt writes data at offset into vinode's block list, bracketing the
// mutation with the writer-notifier contract (BeginWrite/EndWrite).
// The parts of existing blocks that overlap the written range are
// replaced, and their parts outside it are kept; the result keeps the
// non-overlapping, ascending-offset invariant of the block list.
func WriteAt(vinode *Vinode, data []byte, offset int64) {
	if len(data) == 0 {
		return
	}

	vinode.WithWrite(func() {
		newBlock := &Block{
			Offset: offset,
			Size:   int64(len(data)),
			Data:   append([]byte(nil), data...),
			Flags:  Initialized,
		}

		end := offset + int64(len(data))
		var head, tail *Block
		cur := vinode.FirstBlock()
		for cur != nil {
			next := cur.Next
			switch {
			case cur.Offset+cur.Size <= offset || cur.Offset >= end:
				// No overlap with the new range: keep as is.
				cur.Next = nil
				if head == nil {
					head = cur
					tail = cur
				} else {
					tail.Next = cur
					tail = cur
				}
			default:
				// Overlaps the written range: its parts outside
				// [offset, end) survive as blocks of their own.
				if cur.Offset < offset {
					tail = &Block{Offset: cur.Offset, Size: offset - cur.Offset, Data: cur.Data[:offset-cur.Offset], Flags: cur.Flags}
					head = insertSorted(head, tail)
				}
				if curEnd := cur.Offset + cur.Size; curEnd > end {
					tail = &Block{Offset: end, Size: curEnd - end, Data: cur.Data[end-cur.Offset:], Flags: cur.Flags}
					head = insertSorted(head, tail)
				}
			}
			cur = next
		}

		merged := insertSorted(head, newBlock)
		vinode.SetFirstBlock(merged)

		if end > vinode.Size() {
			vinode.SetSize(end)
		}
	})
}

func insertSorted(head, b *Block) *Block {
	if head == nil || b.Offset < head.Offset {
		b.Next = head
		return b
	}
	cur := head
	for cur.Next != nil && cur.Next.Offset < b.Offset {
		cur = cur.Next
	}
	b.Next = cur.Next
	cur.Next = b
	return head
}

// ReadAt is the locked slow-path read: called with vinode.Lock held for
// reading, it walks the block list and copies bytes, reading zero for
// any sparse gap or past-EOF tail.
func ReadAt(vinode *Vinode, buf []byte, offset int64) int {
	size := vinode.Size()
	if offset >= size {
		return 0
	}

	n := len(buf)
	if int64(n) > size-offset {
		n = int(size - offset)
	}

	filled := 0
	cursor := offset
	block := vinode.FirstBlock()
	for filled < n {
		for block != nil && block.Offset+block.Size <= cursor {
			block = block.Next
		}

		if block == nil || !block.Initialized() || cursor < block.Offset {
			gapEnd := size
			if block != nil {
				gapEnd = block.Offset
			}
			if gapEnd > offset+int64(n) {
				gapEnd = offset + int64(n)
			}
			zeroLen := int(gapEnd - cursor)
			for i := 0; i < zeroLen; i++ {
				buf[filled+i] = 0
			}
			filled += zeroLen
			cursor += int64(zeroLen)
			continue
		}

		offInBlock := cursor - block.Offset
		avail := block.Size - offInBlock
		want := int64(n - filled)
		if avail > want {
			avail = want
		}
		copy(buf[filled:filled+int(avail)], block.Data[offInBlock:offInBlock+avail])
		filled += int(avail)
		cursor += avail
	}

	return filled
}

// IterateRange returns the block covering (or immediately preceding) the
// given offset, the way the real PM layer's iterate_on_file_range does
// after completing a read/write — the value lfit.Cache.Setup expects as
// its block argument.
func IterateRange(vinode *Vinode, offset int64) *Block {
	var prev *Block
	for b := vinode.FirstBlock(); b != nil; b = b.Next {
		if b.Contains(offset) {
			return b
		}
		if b.Offset > offset {
			return prev
		}
		prev = b
	}
	return prev
}
