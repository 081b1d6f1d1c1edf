package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger provides leveled, printf-style logging on top of a slog handler.
type Logger struct {
	sl *slog.Logger
}

// LoggerOptions configures NewLoggerWithOptions.
type LoggerOptions struct {
	Level  string    // debug, info, warn or error
	JSON   bool      // emit JSON records instead of text
	Output io.Writer // default: stdout
}

// NewLogger creates an info-level text Logger writing to stdout.
func NewLogger() *Logger {
	return NewLoggerWithOptions(LoggerOptions{})
}

// NewNopLogger discards everything.
func NewNopLogger() *Logger {
	return NewLoggerWithOptions(LoggerOptions{Output: io.Discard})
}

// NewLoggerWithOptions builds a Logger from opts.
func NewLoggerWithOptions(opts LoggerOptions) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}
	return &Logger{sl: slog.New(handler)}
}

// ParseLevel maps a level name to a slog.Level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// With returns a Logger that adds attrs to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sl: l.sl.With(args...)}
}

// Slog exposes the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger { return l.sl }

func (l *Logger) Info(format string, args ...any)  { l.log(slog.LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.log(slog.LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log(slog.LevelError, format, args...) }
func (l *Logger) Debug(format string, args ...any) { l.log(slog.LevelDebug, format, args...) }

func (l *Logger) log(level slog.Level, format string, args ...any) {
	ctx := context.Background()
	if !l.sl.Enabled(ctx, level) {
		return
	}
	l.sl.Log(ctx, level, fmt.Sprintf(format, args...))
}
