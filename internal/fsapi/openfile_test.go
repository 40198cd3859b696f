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

package fsapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmemfile-go/pmemfile/internal/pm"
)

func TestWriteThenReadRoundTrips(t *testing.T) {
	of := NewOpenFile(pm.NewVinode(0))

	n, err := of.Write([]byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	_, err = of.Seek(0, 0)
	require.NoError(t, err)

	buf := make([]byte, 5)
	n, err = of.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}

func TestSeekEndReadsTail(t *testing.T) {
	of := NewOpenFile(pm.NewVinode(0))
	_, err := of.Write([]byte("hello world"))
	require.NoError(t, err)

	off, err := of.Seek(-5, 2) // SEEK_END
	require.NoError(t, err)
	assert.Equal(t, int64(6), off)

	buf := make([]byte, 5)
	n, err := of.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(buf))
}

func TestReadPastEOFReturnsZero(t *testing.T) {
	of := NewOpenFile(pm.NewVinode(0))
	_, err := of.Write([]byte("hi"))
	require.NoError(t, err)

	_, err = of.Seek(100, 0)
	require.NoError(t, err)

	n, err := of.Read(make([]byte, 10))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSeekInvalidWhenceErrors(t *testing.T) {
	of := NewOpenFile(pm.NewVinode(0))

	_, err := of.Seek(0, 99)

	assert.Error(t, err)
}

func TestSeekNegativeResultErrors(t *testing.T) {
	of := NewOpenFile(pm.NewVinode(0))

	_, err := of.Seek(-1, 0) // SEEK_SET to a negative offset

	assert.Error(t, err)
}

func TestAccessPatternClassifiesSequentialReads(t *testing.T) {
	of := NewOpenFile(pm.NewVinode(0))
	_, err := of.Write([]byte("0123456789abcdef"))
	require.NoError(t, err)
	_, err = of.Seek(0, 0)
	require.NoError(t, err)

	buf := make([]byte, 4)
	for i := 0; i < 4; i++ {
		_, err := of.Read(buf)
		require.NoError(t, err)
	}

	assert.Contains(t, of.AccessPattern(), "Sequential")
}

func TestDuplicatedOpenFileSharesCursor(t *testing.T) {
	vinode := pm.NewVinode(0)
	of := NewOpenFile(vinode)
	_, err := of.Write([]byte("abcdef"))
	require.NoError(t, err)

	// A dup shares the *OpenFile pointer in the real vfd layer (the
	// entry holds the pm.File, not a copy), so advancing the cursor via
	// one reference must be visible through "the other fd" — here
	// modeled directly since fsapi has no table of its own.
	alias := of

	_, err = alias.Seek(0, 0)
	require.NoError(t, err)
	buf := make([]byte, 3)
	n, err := of.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "abc", string(buf))

	// The shared cursor advanced for both references.
	buf2 := make([]byte, 3)
	n, err = alias.Read(buf2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "def", string(buf2))
}
