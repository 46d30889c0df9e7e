// Package log provides structured logging for margo, backed by zerolog.
//
// The package owns a process-wide logger and bridges the pkg/errors warning
// system into it, so engine warnings (ill-conditioned variances and the
// like) come out as structured log events alongside everything else.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/margo/pkg/errors"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)
)

// Setup configures the package logger with the given output and level, and
// registers the warning bridge so pkg/errors.Warn emits structured events.
// Call it once at program start; libraries embedding margo may skip it, in
// which case warnings go through the pkg/errors default handler.
func Setup(w io.Writer, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	mu.Lock()
	logger = zerolog.New(w).With().Timestamp().Logger().Level(lvl)
	mu.Unlock()

	errors.SetZerologWarnFunc(emitWarning)
	return nil
}

// Logger returns the current package logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	switch level {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, errors.NewValueError("ParseLevel", "invalid log level: "+level)
	}
}

// emitWarning routes a pkg/errors warning into the structured log. Warning
// types implementing zerolog.LogObjectMarshaler contribute their fields.
func emitWarning(warning error) {
	l := Logger()
	ev := l.Warn()
	if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
		ev = ev.EmbedObject(obj)
	}
	ev.Msg(warning.Error())
}
