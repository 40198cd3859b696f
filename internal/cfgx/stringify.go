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

// String renders c on a single line, one brace group per section,
// suitable for a single startup log line rather than a multi-line dump.
// The debug section is not included.
func (c Config) String() string {
	return fmt.Sprintf(
		"vfd-table{max-fds=%d prefer-memfd=%t} lock-free-iterator{fast-path-threshold=%d} logging{severity=%s file-path=%q format=%s} metrics{prometheus-port=%d enable-otel=%t}",
		c.VFD.MaxFDs, c.VFD.PreferMemfd,
		c.LFIT.FastPathThreshold,
		c.Logging.Severity, c.Logging.FilePath, c.Logging.Format,
		c.Metrics.PrometheusPort, c.Metrics.EnableOTel,
	)
}
