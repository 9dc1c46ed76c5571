// Package logger wraps gookit/slog behind a small interface so the scraping
// and analysis packages can be handed a logger instead of writing to stdout.
package logger

import (
	"io"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger is the minimal logging surface used across the application
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	With(fields Fields) Logger
}

// Fields are structured key/value pairs attached to every record of a logger
type Fields map[string]any

type slogLogger struct {
	base   *slog.Logger
	fields Fields
}

// New creates a JSON console logger at the given level ("debug", "info", ...).
// Unknown levels fall back to info.
func New(level string) Logger {
	return &slogLogger{base: slog.NewWithHandlers(newHandler(level, nil))}
}

// NewWriter is like New but writes records to w
func NewWriter(level string, w io.Writer) Logger {
	return &slogLogger{base: slog.NewWithHandlers(newHandler(level, w))}
}

func newHandler(level string, w io.Writer) slog.Handler {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})

	if w != nil {
		h := handler.NewIOWriterHandler(w, levels)
		h.SetFormatter(formatter)
		return h
	}
	h := handler.NewConsoleHandler(levels)
	h.SetFormatter(formatter)
	return h
}

func (l *slogLogger) record() *slog.Record {
	if len(l.fields) == 0 {
		return l.base.WithFields(slog.M{})
	}
	return l.base.WithFields(slog.M(l.fields))
}

func (l *slogLogger) Debugf(format string, args ...any) { l.record().Debugf(format, args...) }
func (l *slogLogger) Infof(format string, args ...any)  { l.record().Infof(format, args...) }
func (l *slogLogger) Warnf(format string, args ...any)  { l.record().Warnf(format, args...) }
func (l *slogLogger) Errorf(format string, args ...any) { l.record().Errorf(format, args...) }

func (l *slogLogger) With(fields Fields) Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &slogLogger{base: l.base, fields: merged}
}

type nopLogger struct{}

// Nop returns a logger that discards everything
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
func (nopLogger) With(Fields) Logger    { return nopLogger{} }
