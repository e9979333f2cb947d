package common

import (
	"context"
	"time"
)

// Logger is the structured logger handlers write to
type Logger interface {
	Log(level, message string, metadata map[string]interface{})
}

type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from context, or returns a no-op logger if not found
func LoggerFromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey).(Logger); ok {
		return logger
	}
	return &noOpLogger{}
}

type noOpLogger struct{}

func (l *noOpLogger) Log(level, message string, metadata map[string]interface{}) {}

// LoggingMiddleware logs every request dispatched through the mediator
func LoggingMiddleware(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
	logger := LoggerFromContext(ctx)
	name := RequestName(request)
	started := time.Now()

	response, err := next(ctx, request)

	metadata := map[string]interface{}{
		"request":     name,
		"duration_ms": time.Since(started).Milliseconds(),
	}
	if err != nil {
		metadata["error"] = err.Error()
		logger.Log("ERROR", "Request failed", metadata)
		return response, err
	}
	logger.Log("DEBUG", "Request handled", metadata)
	return response, nil
}
