// Package logger holds the process logger and the trace id plumbing shared by
// the HTTP layer and the components it calls.
package logger

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type contextKey string

const traceIDKey contextKey = "trace_id"

var std = newStd()

func newStd() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(jsonFormatter())
	return l
}

func jsonFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
}

// Setup applies the configured level. Development mode logs human readable
// text, every other mode logs JSON.
func Setup(level, mode string) {
	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		parsedLevel = logrus.InfoLevel
	}
	std.SetLevel(parsedLevel)

	if mode == "development" {
		std.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
		return
	}
	std.SetFormatter(jsonFormatter())
}

func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// Get exposes the process logger for components that take a logrus.FieldLogger.
func Get() logrus.FieldLogger {
	return std
}

// Named tags every entry with the component that wrote it.
func Named(component string) logrus.FieldLogger {
	return std.WithField("component", component)
}

// Discard returns a logger that drops everything.
func Discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(traceIDKey).(string)
	return traceID
}

// FromContext decorates l with the trace id carried by ctx, if any. A nil l
// means the process logger.
func FromContext(ctx context.Context, l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		l = std
	}
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		return l.WithField("trace_id", traceID)
	}
	return l
}

func WithFields(fields map[string]interface{}) *logrus.Entry {
	return std.WithFields(fields)
}

func WithRun(runID string) *logrus.Entry {
	return std.WithField("run_id", runID)
}

func Info(msg string) { std.Info(msg) }

func Infof(format string, args ...interface{}) { std.Infof(format, args...) }

func Warnf(format string, args ...interface{}) { std.Warnf(format, args...) }

func Errorf(format string, args ...interface{}) { std.Errorf(format, args...) }
