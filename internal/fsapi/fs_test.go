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
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmemfile-go/pmemfile/internal/pm"
	"github.com/pmemfile-go/pmemfile/internal/vfd"
)

// fakeSyscaller is a minimal in-memory vfd.Syscaller, just enough to
// exercise FileSystem end to end without touching the real process fd
// table.
type fakeSyscaller struct {
	next atomic.Int64
}

func (f *fakeSyscaller) alloc() int { return int(f.next.Add(1)) }

func (f *fakeSyscaller) Dup(fd int) (int, error)           { return f.alloc(), nil }
func (f *fakeSyscaller) Dup2(_, newFd int) (int, error)     { return newFd, nil }
func (f *fakeSyscaller) Close(fd int) error                 { return nil }
func (f *fakeSyscaller) Fchdir(fd int) error                { return nil }
func (f *fakeSyscaller) OpenCWD() (int, error)               { return f.alloc(), nil }
func (f *fakeSyscaller) OpenDevNull() (int, error)           { return f.alloc(), nil }
func (f *fakeSyscaller) MemfdCreate(path string) (int, error) { return f.alloc(), nil }

func newTestFileSystem(t *testing.T) *FileSystem {
	t.Helper()
	table, err := vfd.NewTable(&fakeSyscaller{}, vfd.Options{MaxFDs: 32})
	require.NoError(t, err)
	return &FileSystem{Table: table}
}

func TestFileSystemOpenReadWriteClose(t *testing.T) {
	fs := newTestFileSystem(t)
	pool := pm.NewPool("p")
	vinode := pm.NewVinode(0)

	fd, err := fs.OpenPM(pool, vinode, "/greeting")
	require.NoError(t, err)

	n, err := fs.Write(fd, []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = fs.Seek(fd, 0, 0)
	require.NoError(t, err)

	buf := make([]byte, 2)
	n, err = fs.Read(fd, buf)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(buf))

	require.NoError(t, fs.Close(fd))
}

func TestFileSystemDupSharesOpenFile(t *testing.T) {
	fs := newTestFileSystem(t)
	vinode := pm.NewVinode(0)
	fd, err := fs.OpenPM(pm.NewPool("p"), vinode, "/a")
	require.NoError(t, err)

	_, err = fs.Write(fd, []byte("xyz"))
	require.NoError(t, err)

	dupFd, err := fs.Dup(fd)
	require.NoError(t, err)

	_, err = fs.Seek(dupFd, 0, 0)
	require.NoError(t, err)

	buf := make([]byte, 3)
	n, err := fs.Read(fd, buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "xyz", string(buf))
}

func TestFileSystemReadOnNonPMFdIsNotSupported(t *testing.T) {
	fs := newTestFileSystem(t)

	_, err := fs.Read(123456, make([]byte, 1))

	assert.Error(t, err)
}

func TestFileSystemChdirPMThenFchdirSharesAnchor(t *testing.T) {
	fs := newTestFileSystem(t)
	vinode := pm.NewVinode(0)

	require.NoError(t, fs.ChdirPM(pm.NewPool("p"), vinode))

	fd, err := fs.OpenPM(pm.NewPool("q"), pm.NewVinode(0), "/dir")
	require.NoError(t, err)
	require.NoError(t, fs.Fchdir(fd))

	cwd := fs.Table.AtRef(vfd.AtFDCWD)
	defer cwd.Release()
	ref := fs.Table.Ref(fd)
	defer ref.Release()
	assert.Same(t, ref.File, cwd.File, "Fchdir on a PM vfd must install that vfd's entry as the CWD anchor")
}
