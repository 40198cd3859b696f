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
	"sync"
	"sync/atomic"
	"syscall"
)

var errBadFd = syscall.EBADF

// fakeSyscaller is an in-memory Syscaller: every "kernel fd" is just an
// increasing counter, and Dup/Dup2/Close/Fchdir operate on a map instead
// of the process's real fd table. This lets CORE-A's tests run concurrent
// dup/dup2/close/chdir storms without spawning real file descriptors.
type fakeSyscaller struct {
	mu       sync.Mutex
	live     map[int]bool
	next     atomic.Int64
	cwdFd    int
	closedCh chan int

	failDup2 bool
}

func newFakeSyscaller() *fakeSyscaller {
	s := &fakeSyscaller{live: make(map[int]bool), closedCh: make(chan int, 4096)}
	s.cwdFd = s.alloc()
	return s
}

func (s *fakeSyscaller) alloc() int {
	fd := int(s.next.Add(1))
	s.mu.Lock()
	s.live[fd] = true
	s.mu.Unlock()
	return fd
}

func (s *fakeSyscaller) Dup(fd int) (int, error) {
	s.mu.Lock()
	ok := s.live[fd]
	s.mu.Unlock()
	if !ok {
		return 0, errBadFd
	}
	return s.alloc(), nil
}

func (s *fakeSyscaller) Dup2(oldFd, newFd int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDup2 {
		return 0, errBadFd
	}
	if !s.live[oldFd] {
		return 0, errBadFd
	}
	s.live[newFd] = true
	return newFd, nil
}

func (s *fakeSyscaller) Close(fd int) error {
	s.mu.Lock()
	delete(s.live, fd)
	s.mu.Unlock()
	select {
	case s.closedCh <- fd:
	default:
	}
	return nil
}

func (s *fakeSyscaller) Fchdir(fd int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live[fd] {
		return errBadFd
	}
	s.cwdFd = fd
	return nil
}

func (s *fakeSyscaller) OpenCWD() (int, error) {
	return s.alloc(), nil
}

func (s *fakeSyscaller) OpenDevNull() (int, error) {
	return s.alloc(), nil
}

func (s *fakeSyscaller) MemfdCreate(path string) (int, error) {
	return s.alloc(), nil
}
