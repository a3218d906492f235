package log

import "sync/atomic"

// The process default is what nil-logger call sites fall back to.
// Command setup replaces it once flags and config are resolved; until
// then it is the quiet stock logger.
var processDefault atomic.Pointer[Logger]

// SetDefaultLogger replaces the process-wide default logger. A nil
// argument is ignored so the fallback never becomes unusable.
func SetDefaultLogger(logger *Logger) {
	if logger == nil {
		return
	}
	processDefault.Store(logger)
}

// DefaultLogger returns the process-wide default logger, installing
// the stock configuration on first use.
func DefaultLogger() *Logger {
	if logger := processDefault.Load(); logger != nil {
		return logger
	}
	processDefault.CompareAndSwap(nil, Default())
	return processDefault.Load()
}
