package log

import (
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// Init builds the process-wide logger. Production mode emits JSON,
// anything else uses the human-readable development encoder.
func Init(prod bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if prod {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	logger = l
	return l, nil
}

// L returns the process-wide logger. Safe before Init (no-op logger).
func L() *zap.Logger {
	return logger
}

// Sync flushes buffered log entries.
func Sync() {
	_ = logger.Sync()
}
