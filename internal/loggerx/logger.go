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

package loggerx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/pmemfile-go/pmemfile/internal/cfgx"
	"gopkg.in/natefinch/lumberjack.v2"
)

// loggerFactory tracks enough state to rebuild defaultLogger whenever the
// format or destination changes at runtime, keeping construction-time
// config separate from live mutation via SetLogFormat.
type loggerFactory struct {
	mu    sync.Mutex
	file  *lumberjack.Logger
	async *AsyncLogger

	format       string
	level        cfgx.LogSeverity
	programLevel *slog.LevelVar
}

var (
	defaultLoggerFactory = &loggerFactory{
		format:       "text",
		level:        cfgx.InfoLogSeverity,
		programLevel: new(slog.LevelVar),
	}
	defaultLogger = slog.New(newRecordHandler(os.Stderr, defaultLoggerFactory.programLevel, "", false))
)

// InitLogFile points the default logger at a rotated file via
// lumberjack. Passing an empty FilePath leaves logging on stderr.
func InitLogFile(logging cfgx.LoggingConfig) error {
	defaultLoggerFactory.mu.Lock()
	defer defaultLoggerFactory.mu.Unlock()

	defaultLoggerFactory.format = logging.Format
	defaultLoggerFactory.level = logging.Severity
	setLoggingLevel(logging.Severity, defaultLoggerFactory.programLevel)

	var w = os.Stderr
	var out interface {
		Write([]byte) (int, error)
	} = w

	if logging.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   logging.FilePath,
			MaxSize:    100,
			MaxBackups: 2,
			Compress:   true,
		}
		async := NewAsyncLogger(lj, 1024)
		defaultLoggerFactory.file = lj
		defaultLoggerFactory.async = async
		out = async
	}

	defaultLogger = slog.New(newRecordHandler(out, defaultLoggerFactory.programLevel, "", defaultLoggerFactory.format == "json"))
	return nil
}

// SetLogFormat switches the default logger's encoding without touching
// its destination or level.
func SetLogFormat(format string) {
	defaultLoggerFactory.mu.Lock()
	defer defaultLoggerFactory.mu.Unlock()

	if format != "text" && format != "json" {
		format = "json"
	}
	defaultLoggerFactory.format = format

	var out interface {
		Write([]byte) (int, error)
	} = os.Stderr
	if defaultLoggerFactory.async != nil {
		out = defaultLoggerFactory.async
	}
	defaultLogger = slog.New(newRecordHandler(out, defaultLoggerFactory.programLevel, "", format == "json"))
}

// Close flushes and releases any rotated-file logger currently installed.
func Close() error {
	defaultLoggerFactory.mu.Lock()
	defer defaultLoggerFactory.mu.Unlock()

	if defaultLoggerFactory.async == nil {
		return nil
	}
	return defaultLoggerFactory.async.Close()
}

func log(ctx context.Context, level slog.Level, format string, args ...any) {
	if !defaultLogger.Enabled(ctx, level) {
		return
	}
	defaultLogger.Log(ctx, level, fmt.Sprintf(format, args...))
}

// Tracef logs at TRACE, the finest level — every VFD table and lock-free
// iterator decision point, gated by the debug.log-vfd-table and
// debug.log-lfit config toggles.
func Tracef(format string, args ...any) { log(context.Background(), LevelTrace, format, args...) }

// Debugf logs at DEBUG.
func Debugf(format string, args ...any) { log(context.Background(), LevelDebug, format, args...) }

// Infof logs at INFO.
func Infof(format string, args ...any) { log(context.Background(), LevelInfo, format, args...) }

// Warnf logs at WARNING.
func Warnf(format string, args ...any) { log(context.Background(), LevelWarn, format, args...) }

// Errorf logs at ERROR.
func Errorf(format string, args ...any) { log(context.Background(), LevelError, format, args...) }
