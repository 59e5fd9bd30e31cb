package slogging

import (
	"fmt"
	"log/slog"
	"os"
)

// GinContextLike is the subset of *gin.Context needed for per-request
// logging. Declared as an interface to avoid importing gin here.
type GinContextLike interface {
	GetString(key any) string
}

// FallbackLogger provides a simple logger for code paths where the global
// logger is unavailable.
type FallbackLogger struct {
	logger *slog.Logger
}

// Debug logs debug level messages
func (l *FallbackLogger) Debug(format string, args ...any) {
	l.logger.Debug(formatMessage(format, args...))
}

// Info logs info level messages
func (l *FallbackLogger) Info(format string, args ...any) {
	l.logger.Info(formatMessage(format, args...))
}

// Warn logs warning level messages
func (l *FallbackLogger) Warn(format string, args ...any) {
	l.logger.Warn(formatMessage(format, args...))
}

// Error logs error level messages
func (l *FallbackLogger) Error(format string, args ...any) {
	l.logger.Error(formatMessage(format, args...))
}

// NewFallbackLogger creates a logger that writes to stdout
func NewFallbackLogger() SimpleLogger {
	return &FallbackLogger{
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}
}

// ContextLogger wraps the global logger with a request ID prefix.
type ContextLogger struct {
	logger    *Logger
	requestID string
}

// GetContextLogger returns a logger bound to the request ID stored in the
// gin context, falling back to the global logger when absent.
func GetContextLogger(c GinContextLike) SimpleLogger {
	logger := Get()
	if logger == nil {
		return NewFallbackLogger()
	}

	requestID := c.GetString("requestID")
	if requestID == "" {
		return logger
	}

	return &ContextLogger{logger: logger, requestID: requestID}
}

func (cl *ContextLogger) prefix(format string) string {
	return fmt.Sprintf("[req=%s] %s", cl.requestID, format)
}

// Debug logs a debug-level message with request context
func (cl *ContextLogger) Debug(format string, args ...any) {
	cl.logger.Debug(cl.prefix(format), args...)
}

// Info logs an info-level message with request context
func (cl *ContextLogger) Info(format string, args ...any) {
	cl.logger.Info(cl.prefix(format), args...)
}

// Warn logs a warning-level message with request context
func (cl *ContextLogger) Warn(format string, args ...any) {
	cl.logger.Warn(cl.prefix(format), args...)
}

// Error logs an error-level message with request context
func (cl *ContextLogger) Error(format string, args ...any) {
	cl.logger.Error(cl.prefix(format), args...)
}
