package commands

import (
	"io"
	"log/slog"

	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
)

// SlogLogger adapts a slog.Logger to the client Logger interface.
type SlogLogger struct {
	logger *slog.Logger
}

var _ hscrm.Logger = (*SlogLogger)(nil)

// NewSlogLogger writes text logs to w. Debug messages are only emitted when
// verbose is set.
func NewSlogLogger(w io.Writer, verbose bool) *SlogLogger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})

	return &SlogLogger{logger: slog.New(handler)}
}

func (l *SlogLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, attrs(fields)...)
}

func (l *SlogLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, attrs(fields)...)
}

func (l *SlogLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, attrs(fields)...)
}

func (l *SlogLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, attrs(fields)...)
}

func attrs(fields map[string]interface{}) []any {
	args := make([]any, 0, len(fields))
	for key, value := range fields {
		args = append(args, slog.Any(key, value))
	}

	return args
}
