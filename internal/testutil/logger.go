// Package testutil provides helpers shared by the package tests.
package testutil

import (
	"log/slog"
	"testing"
)

// NewLogger returns a logger that writes through t.Log,
// so output only shows up for failing tests or with -v.
func NewLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
