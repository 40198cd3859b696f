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

// Package common holds small cross-package helpers shared by
// internal/vfd, internal/lfit, and internal/fsapi: operation-name
// constants, the read-pattern classifier, the unbounded FIFO queue used
// by internal/vfd's CWD-exchange test, and shutdown-function chaining.
package common

// Op names for the fsapi.FileSystem operations. No log line or metric
// attribute in this module uses them.
const (
	OpRead        = "Read"
	OpWrite       = "Write"
	OpSeek        = "Seek"
	OpDup         = "Dup"
	OpDup2        = "Dup2"
	OpClose       = "Close"
	OpAssign      = "Assign"
	OpChdirPM     = "ChdirPM"
	OpChdirKernel = "ChdirKernel"
	OpFchdir      = "Fchdir"
)
