package logger

import corelogger "github.com/kilianp07/minesched/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards all output.
type NopLogger = corelogger.NopLogger

// New returns a zerolog-backed Logger tagged with component. It follows the
// options of the last Configure call.
func New(component string) Logger {
	return NewZerologLogger(component)
}
