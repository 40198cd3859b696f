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

// This file tracks the byte ranges a PM open file has been read from and
// classifies the result as sequential or random, merging adjacent
// ranges to reason about whether a given open file is a good candidate
// for the lock-free fast path (internal/lfit): a file under sustained
// random access will rarely keep TryRead's cached block valid from one
// call to the next, so the pattern feeds a debug-only diagnostic rather
// than gating behavior.
package common

import (
	"fmt"
	"sort"
)

// ReadRange represents a read operation range with start and end offsets.
type ReadRange struct {
	Start int64
	End   int64
}

// String returns a string representation of the range.
func (rr ReadRange) String() string {
	return fmt.Sprintf("[%d, %d)", rr.Start, rr.End)
}

// Length returns the length of the range.
func (rr ReadRange) Length() int64 {
	return rr.End - rr.Start
}

// ReadPatternVisualizer tracks the byte ranges read from a single open
// file and classifies the resulting access pattern.
type ReadPatternVisualizer struct {
	ranges           []ReadRange
	maxOffset        int64
	totalRangesAdded int // total ranges added, before merging
}

// NewReadPatternVisualizer creates a new, empty tracker.
func NewReadPatternVisualizer() *ReadPatternVisualizer {
	return &ReadPatternVisualizer{ranges: make([]ReadRange, 0)}
}

// AcceptRange adds a new read range to the pattern tracker. Ranges are
// stored in the order they are added to maintain temporal sequence. If
// the new range starts exactly where the last range ends, the two are
// merged, which both keeps the tracked range count bounded for a purely
// sequential reader and feeds analyzePattern's "merged" fast path.
func (rpv *ReadPatternVisualizer) AcceptRange(start, end int64) {
	if start < 0 || end <= start {
		return // invalid range, ignore
	}

	rpv.totalRangesAdded++
	newRange := ReadRange{Start: start, End: end}

	if len(rpv.ranges) > 0 {
		lastRange := &rpv.ranges[len(rpv.ranges)-1]
		if lastRange.End == newRange.Start {
			lastRange.End = newRange.End
			if lastRange.End > rpv.maxOffset {
				rpv.maxOffset = lastRange.End
			}
			return
		}
	}

	rpv.ranges = append(rpv.ranges, newRange)
	if end > rpv.maxOffset {
		rpv.maxOffset = end
	}
}

// Classification reports whether the ranges seen so far look sequential
// or random.
func (rpv *ReadPatternVisualizer) Classification() string {
	return rpv.analyzePattern()
}

// GetRanges returns a copy of all stored ranges.
func (rpv *ReadPatternVisualizer) GetRanges() []ReadRange {
	result := make([]ReadRange, len(rpv.ranges))
	copy(result, rpv.ranges)
	return result
}

// GetMaxOffset returns the maximum offset encountered across all ranges.
func (rpv *ReadPatternVisualizer) GetMaxOffset() int64 {
	return rpv.maxOffset
}

// Reset clears all stored ranges and resets the visualizer state.
func (rpv *ReadPatternVisualizer) Reset() {
	rpv.ranges = rpv.ranges[:0]
	rpv.maxOffset = 0
	rpv.totalRangesAdded = 0
}

// analyzePattern classifies the tracked ranges as sequential or random.
func (rpv *ReadPatternVisualizer) analyzePattern() string {
	// A single merged range after more than one AcceptRange call means
	// every read landed exactly where the previous one ended.
	if len(rpv.ranges) == 1 && rpv.totalRangesAdded > 1 {
		return "Sequential (merged)"
	}

	if len(rpv.ranges) <= 1 {
		return "Insufficient data"
	}

	sequential := true
	overlapping := false
	gaps := 0

	sortedRanges := make([]ReadRange, len(rpv.ranges))
	copy(sortedRanges, rpv.ranges)
	sort.Slice(sortedRanges, func(i, j int) bool {
		return sortedRanges[i].Start < sortedRanges[j].Start
	})

	for i := 1; i < len(sortedRanges); i++ {
		prev := sortedRanges[i-1]
		curr := sortedRanges[i]

		if curr.Start < prev.End {
			overlapping = true
		} else if curr.Start > prev.End {
			gaps++
			sequential = false
		}

		if rpv.ranges[i].Start < rpv.ranges[i-1].End && rpv.ranges[i].Start >= rpv.ranges[i-1].Start {
			continue
		} else if rpv.ranges[i].Start != rpv.ranges[i-1].End {
			sequential = false
		}
	}

	switch {
	case sequential && !overlapping:
		return "Sequential"
	case overlapping:
		return fmt.Sprintf("Random with overlaps (gaps: %d)", gaps)
	default:
		return fmt.Sprintf("Random (gaps: %d)", gaps)
	}
}
