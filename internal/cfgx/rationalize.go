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

package cfgx

import "fmt"

// Rationalize mirrors cfg.Rationalize: cross-field adjustments and
// validation applied once, after decode, before the Config is handed to
// the rest of the program.
func Rationalize(c *Config) error {
	if c.VFD.MaxFDs <= 0 {
		return fmt.Errorf("vfd-table.max-fds must be positive, got %d", c.VFD.MaxFDs)
	}
	if c.LFIT.FastPathThreshold < 0 {
		return fmt.Errorf("lock-free-iterator.fast-path-threshold must be >= 0, got %d", c.LFIT.FastPathThreshold)
	}

	if !isValidSeverity(string(c.Logging.Severity)) {
		return fmt.Errorf("logging.severity %q is not a recognized severity", c.Logging.Severity)
	}

	// A debug build that asks for TRACE everywhere below INFO is a no-op,
	// so any Debug.* flag forces Logging.Severity up to TRACE.
	if c.Debug.LogVFDTable || c.Debug.LogLFIT {
		if c.Logging.Severity.Rank() > TraceLogSeverity.Rank() {
			c.Logging.Severity = TraceLogSeverity
		}
	}

	return nil
}
