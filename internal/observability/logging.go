package observability

import (
	"io"
	"log/slog"
)

// NewLogger returns a text logger writing to w. Verbose enables debug records,
// which include one line per API call with its request ID.
func NewLogger(verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
