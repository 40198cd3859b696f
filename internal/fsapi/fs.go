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
	"syscall"
	"time"

	"github.com/pmemfile-go/pmemfile/internal/loggerx"
	"github.com/pmemfile-go/pmemfile/internal/pm"
	"github.com/pmemfile-go/pmemfile/internal/vfd"
)

// FileSystem is the process-wide entry point a syscall interception
// layer forwards PM-routed calls into. It owns exactly one vfd.Table:
// the virtual file-descriptor table is global mutable state by
// contract, not per-FileSystem.
type FileSystem struct {
	Table *vfd.Table

	// LogAccessPattern mirrors cfgx.DebugConfig.LogLFIT: when set, Read
	// traces each PM-backed vfd's running sequential/random
	// classification, for diagnosing fast-path decline rates.
	LogAccessPattern bool
}

// New builds a FileSystem backed by a real kernel Syscaller.
func New(opts vfd.Options) (*FileSystem, error) {
	table, err := vfd.NewTable(vfd.NewKernelSyscaller(), opts)
	if err != nil {
		return nil, err
	}
	return &FileSystem{Table: table}, nil
}

// OpenPM implements the create/open half of vfd_assign for a PM file: it
// wraps vinode in a fresh OpenFile and installs it under a new kernel
// placeholder fd.
func (fs *FileSystem) OpenPM(pool pm.Pool, vinode *pm.Vinode, path string) (int, error) {
	fd, err := fs.Table.Assign(pool, NewOpenFile(vinode), path)
	if err == nil {
		loggerx.Tracef("fd=%d opened pool=%s (%s) path=%s", fd, pool.Name(), pool.ID(), path)
	}
	return fd, err
}

// Stat implements a minimal fstat(2) for a PM-backed vfd: size and the
// time of the last completed write.
func (fs *FileSystem) Stat(fd int) (Info, error) {
	ref := fs.Table.Ref(fd)
	defer ref.Release()

	of, ok := asOpenFile(ref)
	if !ok {
		return Info{}, syscall.ENOTSUP
	}
	vinode := of.Vinode()
	return Info{Size: vinode.Size(), ModTime: vinode.ModTime()}, nil
}

// Info is the subset of stat(2) this module tracks for a PM file.
type Info struct {
	Size    int64
	ModTime time.Time
}

// asOpenFile resolves fd to its OpenFile, or reports that fd is not a
// PM-managed vfd (ENOTSUP: this FileSystem only serves PM traffic — the
// shim is responsible for routing non-PM fds to the kernel directly).
func asOpenFile(ref vfd.Ref) (*OpenFile, bool) {
	if !ref.IsPM() {
		return nil, false
	}
	of, ok := ref.File.(*OpenFile)
	return of, ok
}

// Read implements read(2) for a PM-backed vfd.
func (fs *FileSystem) Read(fd int, buf []byte) (int, error) {
	ref := fs.Table.Ref(fd)
	defer ref.Release()

	of, ok := asOpenFile(ref)
	if !ok {
		return 0, syscall.ENOTSUP
	}
	n, err := of.Read(buf)
	if fs.LogAccessPattern {
		loggerx.Tracef("fd=%d read access pattern: %s", fd, of.AccessPattern())
	}
	return n, err
}

// Write implements write(2) for a PM-backed vfd.
func (fs *FileSystem) Write(fd int, buf []byte) (int, error) {
	ref := fs.Table.Ref(fd)
	defer ref.Release()

	of, ok := asOpenFile(ref)
	if !ok {
		return 0, syscall.ENOTSUP
	}
	return of.Write(buf)
}

// Seek implements lseek(2) for a PM-backed vfd.
func (fs *FileSystem) Seek(fd int, offset int64, whence int) (int64, error) {
	ref := fs.Table.Ref(fd)
	defer ref.Release()

	of, ok := asOpenFile(ref)
	if !ok {
		return 0, syscall.ENOTSUP
	}
	return of.Seek(offset, whence)
}

// Dup implements dup(2).
func (fs *FileSystem) Dup(fd int) (int, error) {
	return fs.Table.Dup(fd)
}

// Dup2 implements dup2(2).
func (fs *FileSystem) Dup2(oldFd, newFd int) error {
	return fs.Table.Dup2(oldFd, newFd)
}

// Close implements close(2).
func (fs *FileSystem) Close(fd int) error {
	return fs.Table.Close(fd)
}

// ChdirPM implements chdir(2) onto a PM directory.
func (fs *FileSystem) ChdirPM(pool pm.Pool, vinode *pm.Vinode) error {
	return fs.Table.ChdirPM(pool, NewOpenFile(vinode))
}

// ChdirKernel implements chdir(2) onto a kernel directory fd.
func (fs *FileSystem) ChdirKernel(fd int) error {
	return fs.Table.ChdirKernel(fd)
}

// Fchdir implements fchdir(2).
func (fs *FileSystem) Fchdir(fd int) error {
	return fs.Table.Fchdir(fd)
}
