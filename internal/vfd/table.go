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

// Package vfd implements the virtual file-descriptor table that
// multiplexes real kernel file descriptors and PM-resident open files
// behind a single integer namespace.
//
// The table's single mutex is a syncutil.InvariantMutex whose invariant
// closure checks, after every unlock in debug builds, that the CWD cell
// is set; it does not walk the cells or the entries' reference counts.
package vfd

import (
	"sync/atomic"

	"github.com/jacobsa/syncutil"

	"github.com/pmemfile-go/pmemfile/internal/pm"
)

// AtFDCWD is the platform sentinel meaning "use the current working
// directory", mirroring AT_FDCWD on Linux.
const AtFDCWD = -100

// Syscaller is the syscall-forwarding primitive: kernel(call, args...).
// KernelSyscaller is the real implementation; tests substitute a fake
// that records calls without touching the process's actual fd table.
type Syscaller interface {
	Dup(fd int) (int, error)
	Dup2(oldFd, newFd int) (int, error)
	Close(fd int) error
	Fchdir(fd int) error
	OpenCWD() (int, error)
	OpenDevNull() (int, error)
	MemfdCreate(path string) (int, error)
}

// Table is the process-wide VFD table. It must be created once via
// NewTable before any other operation.
type Table struct {
	sc    Syscaller
	ring  *freeSlotRing
	cells []atomic.Pointer[entry]

	// mu serializes all mutating operations and all full reads of a
	// cell. It is an InvariantMutex so every unlock runs checkInvariants
	// in debug builds.
	mu syncutil.InvariantMutex

	cwdCell atomic.Pointer[entry]

	maxFDs      int
	preferMemfd bool
	memfdOK     bool

	onRingExhaustion func()
}

// Options configures NewTable. A zero MaxFDs selects the default of
// 0x8000. PreferMemfd has no such default: when it is false, as in a zero
// Options, Assign always takes its placeholder fd from /dev/null.
type Options struct {
	MaxFDs      int
	PreferMemfd bool

	// OnRingExhaustion, if set, is invoked whenever acquire() would
	// otherwise panic on a live entry — used by internal/metricsx to
	// count the ring-exhaustion failure mode without vfd importing the
	// metrics package directly.
	OnRingExhaustion func()
}

// NewTable builds a Table, fills its free-slot ring, and installs the
// initial CWD anchor by opening "." — the Go analogue of
// vfd_table_init's setup_cwd and check_memfd_syscall.
func NewTable(sc Syscaller, opts Options) (*Table, error) {
	if opts.MaxFDs <= 0 {
		opts.MaxFDs = 0x8000
	}

	t := &Table{
		sc:               sc,
		cells:            make([]atomic.Pointer[entry], opts.MaxFDs),
		maxFDs:           opts.MaxFDs,
		preferMemfd:      opts.PreferMemfd,
		onRingExhaustion: opts.OnRingExhaustion,
	}
	t.ring = newFreeSlotRing(opts.MaxFDs, opts.OnRingExhaustion)
	t.mu = syncutil.NewInvariantMutex(t.checkInvariants)

	if probe, ok := sc.(MemfdProber); ok {
		t.memfdOK = probe.MemfdAvailable()
	}

	cwdFd, err := sc.OpenCWD()
	if err != nil {
		return nil, err
	}
	e := t.ring.acquire()
	e.resetCWD(cwdFd)
	t.cwdCell.Store(e)

	return t, nil
}

func (t *Table) checkInvariants() {
	// INVARIANT: cell i non-nil implies 0 <= i < maxFDs (trivially true
	// for a fixed-length slice; retained to mirror fs.checkInvariants'
	// style of walking the table under the lock it protects).
	if t.cwdCell.Load() == nil {
		panic("vfd: cwd cell must never be nil once initialized")
	}
}

func (t *Table) inRange(fd int) bool {
	return fd >= 0 && fd < t.maxFDs
}

// Ref is the reference handed back by Ref/AtRef: either a pass-through
// (KernelFd only, for a fd this table does not manage) or a full
// reference bound to a live entry, keeping it alive until Release.
type Ref struct {
	Pool     pm.Pool
	File     pm.File
	KernelFd int

	table *Table
	entry *entry
}

// IsPM reports whether this reference names a PM-managed file.
func (r Ref) IsPM() bool { return r.entry != nil && !r.entry.isCWDAnchor }

// Release implements vfd_unref: if the reference carries an entry,
// decrement its count and destroy it if it reaches zero.
func (r Ref) Release() error {
	if r.entry == nil {
		return nil
	}
	return r.entry.decref(r.table.sc, r.table.ring)
}

// Ref implements vfd_ref. The common case — vfd outside range, or the
// cell consume-loads as nil — returns a pass-through reference without
// ever taking the mutex.
func (t *Table) Ref(fd int) Ref {
	if !t.inRange(fd) {
		return Ref{KernelFd: fd}
	}
	if t.cells[fd].Load() == nil {
		return Ref{KernelFd: fd}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.cells[fd].Load()
	if e == nil {
		return Ref{KernelFd: fd}
	}
	e.incref()
	return Ref{Pool: e.pool, File: e.file, KernelFd: fd, table: t, entry: e}
}

// AtRef implements vfd_at_ref: fd == AtFDCWD resolves against the CWD
// cell, otherwise it delegates to Ref.
func (t *Table) AtRef(fd int) Ref {
	if fd != AtFDCWD {
		return t.Ref(fd)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.cwdCell.Load()
	e.incref()
	return Ref{Pool: e.pool, File: e.file, KernelFd: e.kernelCWDFd, table: t, entry: e}
}

// Dup implements vfd_dup. For a fd outside the table's range, it
// forwards straight to the kernel.
func (t *Table) Dup(oldFd int) (int, error) {
	if !t.inRange(oldFd) || t.cells[oldFd].Load() == nil {
		return t.sc.Dup(oldFd)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	newFd, err := t.sc.Dup(oldFd)
	if err != nil {
		return newFd, err
	}

	e := t.cells[oldFd].Load()
	if e == nil {
		return newFd, nil
	}
	if !t.inRange(newFd) {
		return newFd, nil
	}
	if t.cells[newFd].Load() != nil {
		panic("vfd: dup landed on an occupied cell")
	}

	e.incref()
	t.cells[newFd].Store(e)
	return newFd, nil
}

// Dup2 implements vfd_dup2. A dup2 whose destination cell is already
// PM-occupied returns EBUSY instead of asserting — see DESIGN.md's
// decision record.
func (t *Table) Dup2(oldFd, newFd int) error {
	if !t.inRange(oldFd) || t.cells[oldFd].Load() == nil {
		return t.sc.Dup2(oldFd, newFd)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.inRange(newFd) && t.cells[newFd].Load() != nil {
		return errBusy
	}

	if _, err := t.sc.Dup2(oldFd, newFd); err != nil {
		return err
	}

	e := t.cells[oldFd].Load()
	if e == nil || !t.inRange(newFd) {
		return nil
	}

	e.incref()
	t.cells[newFd].Store(e)
	return nil
}

// Close implements vfd_close: the placeholder kernel fd's closure always
// succeeds and is not user-visible for a PM-managed cell, so its error
// is discarded in that case.
func (t *Table) Close(fd int) error {
	var captured *entry

	if t.inRange(fd) {
		t.mu.Lock()
		captured = t.cells[fd].Load()
		if captured != nil {
			t.cells[fd].Store(nil)
		}
		t.mu.Unlock()
	}

	kernelErr := t.sc.Close(fd)

	if captured != nil {
		return captured.decref(t.sc, t.ring)
	}
	return kernelErr
}

// Assign implements vfd_assign: allocate a kernel placeholder fd,
// install a live entry, and return the vfd.
func (t *Table) Assign(pool pm.Pool, file pm.File, path string) (int, error) {
	fd, err := t.acquireKernelPlaceholder(path)
	if err != nil {
		return 0, err
	}
	if fd >= t.maxFDs {
		_ = t.sc.Close(fd)
		return 0, errTooManyFiles
	}

	e := t.ring.acquire()
	e.resetPM(pool, file)

	t.mu.Lock()
	if t.cells[fd].Load() != nil {
		t.mu.Unlock()
		panic("vfd: assign target cell already occupied")
	}
	t.cells[fd].Store(e)
	t.mu.Unlock()

	return fd, nil
}

func (t *Table) acquireKernelPlaceholder(path string) (int, error) {
	if t.preferMemfd && t.memfdOK {
		fd, err := t.sc.MemfdCreate(path)
		if err == nil {
			return fd, nil
		}
		// memfd_create can fail for a too-long name; fall through to
		// the portable fallback rather than surfacing the error.
	}
	return t.sc.OpenDevNull()
}

// installCWD is the shared tail of ChdirPM/ChdirKernel: it atomically
// replaces the CWD cell under the mutex and unrefs the previous entry
// outside it.
//
// The source includes a worked example of why a bare atomic exchange of
// the cell, done outside the mutex, races with Ref: thread T0 reads the
// old cwd entry out of the cell, thread T1 exchanges the cell and unrefs
// (and thereby may destroy/recycle) that same old entry, and only then
// does T0's incref run — against an entry that may already be a
// different live file. Holding the mutex across both the read and the
// increment in Ref/AtRef, and across the cell replacement here, closes
// that window.
func (t *Table) installCWD(newEntry *entry) error {
	t.mu.Lock()
	old := t.cwdCell.Swap(newEntry)
	t.mu.Unlock()

	return old.decref(t.sc, t.ring)
}

// ChdirPM implements vfd_chdir_pm.
func (t *Table) ChdirPM(pool pm.Pool, file pm.File) error {
	e := t.ring.acquire()
	e.resetPM(pool, file)
	return t.installCWD(e)
}

// ChdirKernel implements vfd_chdir_kernel.
func (t *Table) ChdirKernel(fd int) error {
	if err := t.sc.Fchdir(fd); err != nil {
		return err
	}

	e := t.ring.acquire()
	e.resetCWD(fd)
	return t.installCWD(e)
}

// Fchdir implements vfd_fchdir: if fd is a table-managed cell, the
// existing entry is installed as CWD directly (ref-incremented, not
// reopened); otherwise a fresh kernel fd is dup'd, fchdir'd onto, and
// wrapped in a new CWD anchor.
func (t *Table) Fchdir(fd int) error {
	if t.inRange(fd) {
		t.mu.Lock()
		e := t.cells[fd].Load()
		if e != nil {
			e.incref()
			old := t.cwdCell.Swap(e)
			t.mu.Unlock()
			return old.decref(t.sc, t.ring)
		}
		t.mu.Unlock()
	}

	dupFd, err := t.sc.Dup(fd)
	if err != nil {
		return err
	}
	return t.ChdirKernel(dupFd)
}
