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

package common

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRangeStringAndLength(t *testing.T) {
	rr := ReadRange{Start: 500, End: 1024}
	assert.Equal(t, "[500, 1024)", rr.String())
	assert.Equal(t, int64(524), rr.Length())
}

func TestAcceptRangeIgnoresInvalidRanges(t *testing.T) {
	rpv := NewReadPatternVisualizer()

	rpv.AcceptRange(-1, 10)
	rpv.AcceptRange(10, 10)
	rpv.AcceptRange(10, 5)

	assert.Empty(t, rpv.GetRanges())
	assert.Equal(t, int64(0), rpv.GetMaxOffset())
}

func TestAcceptRangeMergesAdjacentReads(t *testing.T) {
	rpv := NewReadPatternVisualizer()

	rpv.AcceptRange(0, 4)
	rpv.AcceptRange(4, 8)
	rpv.AcceptRange(8, 16)

	require.Len(t, rpv.GetRanges(), 1, "three back-to-back reads must merge into one tracked range")
	assert.Equal(t, ReadRange{Start: 0, End: 16}, rpv.GetRanges()[0])
	assert.Equal(t, int64(16), rpv.GetMaxOffset())
	assert.Equal(t, "Sequential (merged)", rpv.Classification())
}

func TestClassificationInsufficientDataBelowTwoRanges(t *testing.T) {
	rpv := NewReadPatternVisualizer()
	assert.Equal(t, "Insufficient data", rpv.Classification())

	rpv.AcceptRange(0, 4)
	assert.Equal(t, "Insufficient data", rpv.Classification())
}

func TestClassificationRandomReportsGapCount(t *testing.T) {
	rpv := NewReadPatternVisualizer()

	rpv.AcceptRange(100, 110)
	rpv.AcceptRange(0, 10)
	rpv.AcceptRange(200, 210)

	assert.Equal(t, "Random (gaps: 2)", rpv.Classification())
}

func TestClassificationOverlappingReads(t *testing.T) {
	rpv := NewReadPatternVisualizer()

	rpv.AcceptRange(0, 10)
	rpv.AcceptRange(5, 15)

	assert.Contains(t, rpv.Classification(), "Random with overlaps")
}

func TestResetClearsState(t *testing.T) {
	rpv := NewReadPatternVisualizer()
	rpv.AcceptRange(0, 10)
	rpv.AcceptRange(20, 30)

	rpv.Reset()

	assert.Empty(t, rpv.GetRanges())
	assert.Equal(t, int64(0), rpv.GetMaxOffset())
	assert.Equal(t, "Insufficient data", rpv.Classification())
}

// TestClassificationMatchesKnownSequentialAndRandomTraces replays two
// realistic access traces a PM open file would actually produce — a
// streaming sequential scan and a shuffled random-access workload over
// the same byte range — and checks the classifier tells them apart, the
// way internal/fsapi.OpenFile relies on it to for its debug trace log.
func TestClassificationMatchesKnownSequentialAndRandomTraces(t *testing.T) {
	const chunk = 64
	const chunks = 20

	sequential := NewReadPatternVisualizer()
	for i := 0; i < chunks; i++ {
		sequential.AcceptRange(int64(i*chunk), int64((i+1)*chunk))
	}
	assert.Equal(t, "Sequential (merged)", sequential.Classification())

	order := rand.New(rand.NewSource(1)).Perm(chunks)
	random := NewReadPatternVisualizer()
	for _, i := range order {
		random.AcceptRange(int64(i*chunk), int64((i+1)*chunk))
	}
	assert.Contains(t, random.Classification(), "Random")
}
