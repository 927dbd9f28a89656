// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"log/slog"
	"testing"
)

// NewTestLogger returns a debug-level slog logger routed through
// tb.Log, so provider and converter output lands in the test log and
// surfaces only on failure or under -v.
func NewTestLogger(tb testing.TB) *slog.Logger {
	tb.Helper()
	return slog.New(slog.NewTextHandler(logWriter{tb}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// logWriter adapts testing.TB to io.Writer for the slog handler.
type logWriter struct {
	tb testing.TB
}

func (w logWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(string(p))
	return len(p), nil
}
