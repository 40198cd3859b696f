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
	"fmt"
	"io"
	"os"
	"sync"
)

// AsyncLogger decouples log-record formatting (on the caller's
// goroutine, which may be holding vfd.Table's InvariantMutex or a
// vinode lock) from the blocking disk write a rotated file requires.
// Grounded on async_logger_test.go's TestAsyncLogger_WriteAndClose
// expectations: every byte written before Close is flushed in order
// before Close returns.
type AsyncLogger struct {
	dest io.WriteCloser

	mu      sync.Mutex
	cond    *sync.Cond
	queue   [][]byte
	closed  bool
	done    chan struct{}
	maxSize int
}

// NewAsyncLogger starts a background goroutine draining writes into
// dest. bufferSize bounds how many pending writes may queue before new
// writes are dropped with a warning to stderr.
func NewAsyncLogger(dest io.WriteCloser, bufferSize int) *AsyncLogger {
	a := &AsyncLogger{
		dest:    dest,
		done:    make(chan struct{}),
		maxSize: bufferSize,
	}
	a.cond = sync.NewCond(&a.mu)

	go a.run()
	return a
}

func (a *AsyncLogger) run() {
	defer close(a.done)
	for {
		a.mu.Lock()
		for len(a.queue) == 0 && !a.closed {
			a.cond.Wait()
		}
		if len(a.queue) == 0 && a.closed {
			a.mu.Unlock()
			return
		}
		next := a.queue[0]
		a.queue = a.queue[1:]
		a.mu.Unlock()

		a.dest.Write(next)
	}
}

// Write implements io.Writer. It copies p (the caller's buffer is not
// safe to retain past return) and enqueues it for the background
// goroutine, dropping the write if the queue is full.
func (a *AsyncLogger) Write(p []byte) (int, error) {
	cp := append([]byte(nil), p...)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return 0, fmt.Errorf("asynclogger: write after close")
	}
	if len(a.queue) >= a.maxSize {
		a.mu.Unlock()
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
		return len(p), nil
	}
	a.queue = append(a.queue, cp)
	a.cond.Signal()
	a.mu.Unlock()

	return len(p), nil
}

// Close drains the remaining queue and closes the underlying
// destination. It blocks until every previously-queued write has been
// delivered.
func (a *AsyncLogger) Close() error {
	a.mu.Lock()
	a.closed = true
	a.cond.Signal()
	a.mu.Unlock()

	<-a.done
	return a.dest.Close()
}
