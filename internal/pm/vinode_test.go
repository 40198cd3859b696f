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
	"time"

	"github.com/jacobsa/timeutil"
	"github.com/stretchr/testify/assert"
)

func TestEndWriteAdvancesModTime(t *testing.T) {
	clock := &timeutil.SimulatedClock{}
	clock.SetTime(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	v := NewVinodeWithClock(0, clock)
	initial := v.ModTime()

	clock.AdvanceTime(time.Minute)
	WriteAt(v, []byte("hello"), 0)

	assert.True(t, v.ModTime().After(initial), "ModTime must advance after a completed write")
	assert.True(t, v.ModTime().Equal(clock.Now()))
}
