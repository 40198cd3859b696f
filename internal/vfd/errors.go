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

import "syscall"

// errTooManyFiles is returned by Assign when the kernel placeholder fd
// it acquired falls outside the table's range. errBusy is returned by
// Dup2 when the destination cell is already PM-occupied — see
// DESIGN.md's decision record.
//
// Both are plain syscall.Errno values: the VFD layer never converts
// between error spaces, so callers that type-assert against
// syscall.Errno (as any POSIX-shaped caller would) see the same errno
// they would from a raw kernel call.
var (
	errTooManyFiles = syscall.ENFILE
	errBusy         = syscall.EBUSY
)
