// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that drops every record
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
