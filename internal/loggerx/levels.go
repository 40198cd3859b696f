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

// Package loggerx is this module's structured logger: a log/slog
// frontend with a TRACE level below slog's own Debug, rotated file
// output via lumberjack, and text/json encodings.
package loggerx

import (
	"log/slog"

	"github.com/pmemfile-go/pmemfile/internal/cfgx"
)

// A level below slog.LevelDebug is reserved for TRACE, and an "off"
// level above Error that nothing reaches.
const (
	LevelTrace slog.Level = -8
	LevelDebug slog.Level = slog.LevelDebug
	LevelInfo  slog.Level = slog.LevelInfo
	LevelWarn  slog.Level = slog.LevelWarn
	LevelError slog.Level = slog.LevelError
	LevelOff   slog.Level = 12
)

// setLoggingLevel maps a cfgx.LogSeverity onto programLevel.
func setLoggingLevel(severity cfgx.LogSeverity, programLevel *slog.LevelVar) {
	switch severity {
	case cfgx.TraceLogSeverity:
		programLevel.Set(LevelTrace)
	case cfgx.DebugLogSeverity:
		programLevel.Set(LevelDebug)
	case cfgx.InfoLogSeverity:
		programLevel.Set(LevelInfo)
	case cfgx.WarningLogSeverity:
		programLevel.Set(LevelWarn)
	case cfgx.ErrorLogSeverity:
		programLevel.Set(LevelError)
	case cfgx.OffLogSeverity:
		programLevel.Set(LevelOff)
	default:
		programLevel.Set(LevelInfo)
	}
}

func levelString(l slog.Level) string {
	switch {
	case l < LevelDebug:
		return "TRACE"
	case l < LevelInfo:
		return "DEBUG"
	case l < LevelWarn:
		return "INFO"
	case l < LevelError:
		return "WARNING"
	case l < LevelOff:
		return "ERROR"
	default:
		return "OFF"
	}
}
