// Package logger adapts zerolog to the ssgate.Logger interface.
package logger

import (
	"github.com/rs/zerolog"

	"github.com/ssocks/ssgate/ssgate"
)

// Logger is a zerolog-backed implementation of ssgate.Logger.
type Logger struct {
	log  zerolog.Logger
	name string
}

// New wraps a zerolog logger.
func New(log zerolog.Logger) Logger {
	return Logger{log: log}
}

func (l Logger) Named(name string) ssgate.Logger {
	if l.name != "" {
		name = l.name + "." + name
	}

	return Logger{
		log:  l.log.With().Str("logger", name).Logger(),
		name: name,
	}
}

func (l Logger) BindStr(name, value string) ssgate.Logger {
	return Logger{
		log:  l.log.With().Str(name, value).Logger(),
		name: l.name,
	}
}

func (l Logger) BindInt(name string, value int) ssgate.Logger {
	return Logger{
		log:  l.log.With().Int(name, value).Logger(),
		name: l.name,
	}
}

func (l Logger) Debug(msg string) {
	l.log.Debug().Msg(msg)
}

func (l Logger) DebugError(msg string, err error) {
	l.log.Debug().Err(err).Msg(msg)
}

func (l Logger) Info(msg string) {
	l.log.Info().Msg(msg)
}

func (l Logger) InfoError(msg string, err error) {
	l.log.Info().Err(err).Msg(msg)
}

func (l Logger) Warning(msg string) {
	l.log.Warn().Msg(msg)
}

func (l Logger) WarningError(msg string, err error) {
	l.log.Warn().Err(err).Msg(msg)
}

// Ensure interface compliance.
var _ ssgate.Logger = Logger{}
