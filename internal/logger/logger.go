// Package logger exposes the process-wide structured logger.
package logger

import (
	"log/slog"
	"os"
)

// L is the shared logger. It defaults to text output on stderr until a
// binary replaces it via Set.
var L = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Set swaps the shared logger. A nil logger is ignored.
func Set(l *slog.Logger) {
	if l == nil {
		return
	}
	L = l
}
