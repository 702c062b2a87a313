package internal

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

const slogLevelTrace = slog.LevelDebug - 4

// Logger provides leveled, structured logging on top of log/slog
type Logger struct {
	level LogLevel
	out   *slog.Logger
}

// NewLogger creates a logger writing text records to stderr
func NewLogger(level LogLevel) *Logger {
	return NewLoggerTo(os.Stderr, level)
}

// NewLoggerTo creates a logger writing text records to w
func NewLoggerTo(w io.Writer, level LogLevel) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevelTrace})
	return &Logger{level: level, out: slog.New(handler)}
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")))
}

// ParseLogLevel maps ERROR/WARN/INFO/DEBUG/TRACE to a level, defaulting to INFO
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

// With returns a logger that adds the given attributes to every record
func (l *Logger) With(args ...any) *Logger {
	return &Logger{level: l.level, out: l.out.With(args...)}
}

// Error logs error messages
func (l *Logger) Error(msg string, args ...any) {
	l.log(LogLevelError, slog.LevelError, msg, args)
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LogLevelWarn, slog.LevelWarn, msg, args)
}

// Info logs info messages
func (l *Logger) Info(msg string, args ...any) {
	l.log(LogLevelInfo, slog.LevelInfo, msg, args)
}

// Debug logs debug messages
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LogLevelDebug, slog.LevelDebug, msg, args)
}

// Trace logs trace messages
func (l *Logger) Trace(msg string, args ...any) {
	l.log(LogLevelTrace, slogLevelTrace, msg, args)
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

func (l *Logger) log(level LogLevel, slogLevel slog.Level, msg string, args []any) {
	if l.level < level {
		return
	}
	l.out.Log(context.Background(), slogLevel, msg, args...)
}

// Discard is a logger that drops every record
var Discard = NewLoggerTo(io.Discard, LogLevelError)

// Global logger instance
var DefaultLogger = NewDefaultLogger()
