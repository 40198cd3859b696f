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
	"errors"

	"github.com/google/uuid"
)

// ErrClosed is returned by operations on a File that has already been
// closed.
var ErrClosed = errors.New("pm: file already closed")

// Pool is a memory-mapped persistent-memory container holding one or
// more files, consumed by the VFD layer as an opaque reference: an
// opaque container identified by name, handed around by reference
// rather than by value.
type Pool interface {
	// Name identifies the pool, for diagnostics.
	Name() string

	// ID is a stable identifier for the pool's lifetime, distinguishing
	// two pools that happen to share a Name (e.g. across a close/reopen
	// cycle) in logs and metrics.
	ID() uuid.UUID
}

// File is a PM-resident open file, consumed by the VFD layer as an
// opaque reference paired with a Pool.
type File interface {
	// Vinode is the virtual inode backing this open file.
	Vinode() *Vinode

	// Close releases the open-file object. Called exactly once, by the
	// VFD-entry's destroy path, when the entry's reference count
	// reaches zero.
	Close() error
}

// pool is the reference Pool implementation used by tests and by the
// stand-alone command in cmd/pmemfilectl.
type pool struct {
	name string
	id   uuid.UUID
}

// NewPool returns a named, otherwise-unopinionated Pool with a freshly
// generated ID.
func NewPool(name string) Pool {
	return &pool{name: name, id: uuid.New()}
}

func (p *pool) Name() string  { return p.name }
func (p *pool) ID() uuid.UUID { return p.id }

// file is the reference File implementation.
type file struct {
	vinode *Vinode
	closed bool
}

// NewFile wraps vinode as an open PM file.
func NewFile(vinode *Vinode) File {
	return &file{vinode: vinode}
}

func (f *file) Vinode() *Vinode { return f.vinode }

func (f *file) Close() error {
	if f.closed {
		return ErrClosed
	}
	f.closed = true
	return nil
}
