// Package logging configures the engine's structured logger.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New builds a charmbracelet/log logger writing to stderr at the given
// level ("debug", "info", "warn", "error"), with caller reporting enabled
// for anything below info.
func New(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		ReportCaller:    lvl <= log.DebugLevel,
		Level:           lvl,
	})
	return logger
}
