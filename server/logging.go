package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a small field-based logging interface wrapping zerolog:
// callers attach structured fields rather than formatting strings.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}

type zerologLogger struct {
	z zerolog.Logger
}

// NewLogger builds the process-wide logger writing structured JSON to
// stderr, with human-readable console output in development.
func NewLogger(pretty bool) Logger {
	var out zerolog.ConsoleWriter
	var z zerolog.Logger
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		z = zerolog.New(out).With().Timestamp().Logger()
	} else {
		z = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return &zerologLogger{z: z}
}

func (l *zerologLogger) with(e *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	return e
}

func (l *zerologLogger) Debug(msg string, fields map[string]interface{}) {
	l.with(l.z.Debug(), fields).Msg(msg)
}

func (l *zerologLogger) Info(msg string, fields map[string]interface{}) {
	l.with(l.z.Info(), fields).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields map[string]interface{}) {
	l.with(l.z.Warn(), fields).Msg(msg)
}

func (l *zerologLogger) Error(msg string, err error, fields map[string]interface{}) {
	e := l.z.Error().Err(err)
	l.with(e, fields).Msg(msg)
}

// log is the process-wide logger instance, initialized here with console
// output; main does not replace it.
var log Logger = NewLogger(true)
