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

// Package cfgx is this module's configuration layer: a mapstructure
// decode-hook-validated Config struct bound to cobra/viper/pflag,
// split across types.go/decode_hook.go/rationalize.go/stringify.go,
// scoped to the knobs at the VFD/LFIT boundary: MaxFDs,
// FastPathThreshold, and the CWD/memfd setup policy, plus the ambient
// logging knobs.
package cfgx

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// SlotCount is the datatype for vfd-table.max-fds (and similar hex-literal)
// params, accepting either decimal or the 0x-prefixed hex literal the
// original pmemfile source uses for MAX_FDS (0x8000). Mirrors cfg.Octal's
// pattern of a small custom UnmarshalText-validated int type.
type SlotCount int

func (s *SlotCount) UnmarshalText(text []byte) error {
	v, err := strconv.ParseInt(string(text), 0 /* base: infer 0x/0/decimal */, 32)
	if err != nil {
		return fmt.Errorf("invalid slot count %q: %w", text, err)
	}
	if v <= 0 {
		return fmt.Errorf("slot count must be positive, got %d", v)
	}
	*s = SlotCount(v)
	return nil
}

func (s SlotCount) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(s), 10)), nil
}

// LogSeverity mirrors cfg.LogSeverity: a validated enum of the severities
// internal/loggerx accepts.
type LogSeverity string

const (
	TraceLogSeverity   LogSeverity = "TRACE"
	DebugLogSeverity   LogSeverity = "DEBUG"
	InfoLogSeverity    LogSeverity = "INFO"
	WarningLogSeverity LogSeverity = "WARNING"
	ErrorLogSeverity   LogSeverity = "ERROR"
	OffLogSeverity     LogSeverity = "OFF"
)

var severityRanking = map[LogSeverity]int{
	TraceLogSeverity:   0,
	DebugLogSeverity:   1,
	InfoLogSeverity:    2,
	WarningLogSeverity: 3,
	ErrorLogSeverity:   4,
	OffLogSeverity:     5,
}

func (l *LogSeverity) UnmarshalText(text []byte) error {
	level := LogSeverity(strings.ToUpper(string(text)))
	if _, ok := severityRanking[level]; !ok {
		return fmt.Errorf("invalid log severity level: %s", text)
	}
	*l = level
	return nil
}

// Rank returns the integer rank of the severity, or -1 if unknown.
func (l LogSeverity) Rank() int {
	if r, ok := severityRanking[l]; ok {
		return r
	}
	return -1
}

var validSeverities = []string{"TRACE", "DEBUG", "INFO", "WARNING", "ERROR", "OFF"}

func isValidSeverity(s string) bool {
	return slices.Contains(validSeverities, strings.ToUpper(s))
}
