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
	"io"
	"log/slog"
	"sync"
)

// recordHandler renders records in one of the two fixed shapes the
// teacher's logger produces: a key=value text line (time, severity,
// message), or a single-line JSON object with a split timestamp — rather than slog's
// own default encodings, since downstream log scrapers key off these
// exact field names.
type recordHandler struct {
	w      io.Writer
	mu     *sync.Mutex
	level  *slog.LevelVar
	prefix string
	json   bool
	attrs  []slog.Attr
	groups []string
}

func newRecordHandler(w io.Writer, level *slog.LevelVar, prefix string, json bool) *recordHandler {
	return &recordHandler{w: w, mu: &sync.Mutex{}, level: level, prefix: prefix, json: json}
}

func (h *recordHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *recordHandler) Handle(_ context.Context, r slog.Record) error {
	sev := levelString(r.Level)
	msg := r.Message
	if h.prefix != "" {
		msg = h.prefix + msg
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.json {
		_, err := fmt.Fprintf(h.w, "{\"timestamp\":{\"seconds\":%d,\"nanos\":%d},\"severity\":%q,\"message\":%q}\n",
			r.Time.Unix(), r.Time.Nanosecond(), sev, msg)
		return err
	}

	_, err := fmt.Fprintf(h.w, "time=%q severity=%s message=%q\n",
		r.Time.Format("2006/01/02 15:04:05.000000"), sev, msg)
	return err
}

func (h *recordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &cp
}

func (h *recordHandler) WithGroup(name string) slog.Handler {
	cp := *h
	cp.groups = append(append([]string(nil), h.groups...), name)
	return &cp
}

var _ slog.Handler = (*recordHandler)(nil)
