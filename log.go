package blockart

import (
	"log"
	"sync/atomic"
)

type logFunc func(format string, v ...any)

var logger atomic.Pointer[logFunc]

func init() {
	SetLogger(log.Printf)
}

// Logf sends a build diagnostic to the installed logger, log.Printf by default.
func Logf(format string, v ...any) {
	(*logger.Load())(format, v...)
}

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
// It is safe to call while conversions are running.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		f = func(string, ...any) {}
	}
	lf := logFunc(f)
	logger.Store(&lf)
}
