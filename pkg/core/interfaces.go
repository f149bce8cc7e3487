package core

import "log"

// Logger interface for render progress and diagnostics
type Logger interface {
	Printf(format string, args ...interface{})
}

type stdLogger struct{}

func (stdLogger) Printf(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// DefaultLogger returns a Logger backed by the standard log package.
func DefaultLogger() Logger { return stdLogger{} }
