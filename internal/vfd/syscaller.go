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

package vfd

import (
	"golang.org/x/sys/unix"
)

// MemfdProber lets a Syscaller advertise whether memfd_create is
// available on this kernel, mirroring vfd_table_init's one-time
// check_memfd_syscall probe.
type MemfdProber interface {
	MemfdAvailable() bool
}

// KernelSyscaller is the real, Linux-backed implementation of the
// syscall-forwarding primitive, built on golang.org/x/sys/unix.
type KernelSyscaller struct {
	memfdOK bool
}

// NewKernelSyscaller probes memfd_create availability once, exactly as
// vfd_table_init does, and returns a ready Syscaller.
func NewKernelSyscaller() *KernelSyscaller {
	k := &KernelSyscaller{}
	if fd, err := unix.MemfdCreate("check", 0); err == nil {
		k.memfdOK = true
		_ = unix.Close(fd)
	}
	return k
}

func (k *KernelSyscaller) MemfdAvailable() bool { return k.memfdOK }

func (k *KernelSyscaller) Dup(fd int) (int, error) {
	return unix.Dup(fd)
}

func (k *KernelSyscaller) Dup2(oldFd, newFd int) (int, error) {
	return newFd, unix.Dup2(oldFd, newFd)
}

func (k *KernelSyscaller) Close(fd int) error {
	return unix.Close(fd)
}

func (k *KernelSyscaller) Fchdir(fd int) error {
	return unix.Fchdir(fd)
}

func (k *KernelSyscaller) OpenCWD() (int, error) {
	return unix.Open(".", unix.O_DIRECTORY|unix.O_RDONLY, 0)
}

func (k *KernelSyscaller) OpenDevNull() (int, error) {
	return unix.Open("/dev/null", unix.O_RDONLY, 0)
}

// MemfdCreate allocates a placeholder fd whose name is purely cosmetic
// (the kernel truncates long names — callers fall back to OpenDevNull
// on error).
func (k *KernelSyscaller) MemfdCreate(path string) (int, error) {
	return unix.MemfdCreate(path, 0)
}
