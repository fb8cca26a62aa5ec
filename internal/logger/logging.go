// Package logger provides modifications to charmbracelet/log's default logger to be used in various files/packages.
//
// Loggers write to stderr: in server mode stdout carries the IPC stream.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// New creates a new prefixed charm log that respects the global log level.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: log.GetLevel() == log.DebugLevel,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// SetupGlobal points the package level charm logger at stderr with the given level.
func SetupGlobal(level log.Level, showTimestamp bool) {
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	log.SetReportTimestamp(showTimestamp)
}
