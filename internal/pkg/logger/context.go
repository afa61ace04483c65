package logger

import (
	"context"

	"go.uber.org/zap"
)

// Context keys
type contextKey string

const (
	loggerKey contextKey = "logger"
	runIDKey  contextKey = "run_id"
	jobKey    contextKey = "job"
	fileKey   contextKey = "file"
)

// WithContext returns a logger with fields from context
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	fields := make([]zap.Field, 0, 3)

	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, zap.String("run_id", runID))
	}
	if job := GetJob(ctx); job != "" {
		fields = append(fields, zap.String("job", job))
	}
	if file := GetFile(ctx); file != "" {
		fields = append(fields, zap.String("file", file))
	}

	if len(fields) == 0 {
		return l
	}

	return l.With(fields...)
}

// FromContext extracts logger from context, returns default logger if not found
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return L()
	}

	if logger, ok := ctx.Value(loggerKey).(*Logger); ok && logger != nil {
		return logger.WithContext(ctx)
	}

	return L().WithContext(ctx)
}

// ToContext adds logger to context
func ToContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithRunID adds the run ID to context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithJob adds the job name to context
func WithJob(ctx context.Context, job string) context.Context {
	return context.WithValue(ctx, jobKey, job)
}

// WithFile adds the file being processed to context
func WithFile(ctx context.Context, file string) context.Context {
	return context.WithValue(ctx, fileKey, file)
}

// GetRunID extracts the run ID from context
func GetRunID(ctx context.Context) string {
	if v, ok := ctx.Value(runIDKey).(string); ok {
		return v
	}
	return ""
}

// GetJob extracts the job name from context
func GetJob(ctx context.Context) string {
	if v, ok := ctx.Value(jobKey).(string); ok {
		return v
	}
	return ""
}

// GetFile extracts the file name from context
func GetFile(ctx context.Context) string {
	if v, ok := ctx.Value(fileKey).(string); ok {
		return v
	}
	return ""
}

// DebugContext logs at debug level with the logger and fields carried by ctx
func DebugContext(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Debug(msg, fields...)
}

// WarnContext logs at warn level with the logger and fields carried by ctx
func WarnContext(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Warn(msg, fields...)
}
