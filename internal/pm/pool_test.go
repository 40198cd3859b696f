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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPoolAssignsDistinctIDsToSameName(t *testing.T) {
	a := NewPool("shared-name")
	b := NewPool("shared-name")

	assert.Equal(t, a.Name(), b.Name())
	assert.NotEqual(t, a.ID(), b.ID(), "two pools must not share an ID even with the same Name")
}
