// Package testutil holds helpers shared by package tests: loggers that write
// through testing.TB, and fixtures built on disk.
package testutil

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t: t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// LogCapture keeps every line a capturing logger writes.
type LogCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewCaptureLogger returns a logger that writes to t.Log() and to the returned
// capture, so tests can assert on what was logged.
func NewCaptureLogger(t testing.TB) (*slog.Logger, *LogCapture) {
	t.Helper()
	c := &LogCapture{}
	logger := slog.New(slog.NewTextHandler(testWriter{t: t, capture: c}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	return logger, c
}

// String returns everything logged so far.
func (c *LogCapture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Count returns how many records were logged with the message msg.
func (c *LogCapture) Count(msg string) int {
	return strings.Count(c.String(), fmt.Sprintf("msg=%q", msg))
}

type testWriter struct {
	t       testing.TB
	capture *LogCapture
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	if w.capture != nil {
		w.capture.mu.Lock()
		w.capture.buf.Write(p)
		w.capture.mu.Unlock()
	}
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
