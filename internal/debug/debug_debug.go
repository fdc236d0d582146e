//go:build debug

package debug

import (
	"log/slog"
	"os"
)

const On = true

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

// Trace logs msg with key-value pairs, like slog.Debug.
func Trace(msg string, args ...any) {
	logger.Debug(msg, args...)
}
