package log

import (
	"io"
	"log/slog"
)

// SlogAdapter forwards Logger calls to a standard library *slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

func (a SlogAdapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }
func (a SlogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a SlogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }

// NewSlogAdapter wraps logger as a Logger, falling back to DefaultLogger
// when logger is nil.
func NewSlogAdapter(logger *slog.Logger) Logger {
	if logger == nil {
		return DefaultLogger
	}
	return SlogAdapter{logger: logger}
}

// NewReadableTextLogger builds a Logger that writes a human-readable,
// timestamp-free text stream to output — the shape cmd/aurelia-ls serve
// uses on stderr, since stdout carries the protocol wire format.
func NewReadableTextLogger(output io.Writer, debugEnabled bool) Logger {
	level := slog.LevelInfo
	if debugEnabled {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return NewSlogAdapter(slog.New(handler))
}
