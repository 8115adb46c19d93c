// Package ui defines the narrow output surface the reconciler reports
// through. Collaborators receive semantic events only; formatting belongs
// to the implementation.
package ui

import "github.com/rs/zerolog"

// UI receives informational and warning events. Calls are fire-and-forget.
type UI interface {
	Info(msg string)
	Warn(msg string)
}

// Logger is the production UI, backed by zerolog.
type Logger struct {
	log zerolog.Logger
}

// NewLogger wraps a zerolog logger as a UI.
func NewLogger(log zerolog.Logger) *Logger {
	return &Logger{log: log}
}

func (l *Logger) Info(msg string) {
	l.log.Info().Msg(msg)
}

func (l *Logger) Warn(msg string) {
	l.log.Warn().Msg(msg)
}
