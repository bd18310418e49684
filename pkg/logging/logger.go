package logging

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const runIDKey ctxKey = "run_id"

type logrusLogger struct {
	entry *logrus.Entry
}

func (l *logrusLogger) Debug(args ...any) {
	l.entry.Debug(args...)
}

func (l *logrusLogger) Debugf(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

func (l *logrusLogger) Info(args ...any) {
	l.entry.Info(args...)
}

func (l *logrusLogger) Infof(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *logrusLogger) Error(args ...any) {
	l.entry.Error(args...)
}

func (l *logrusLogger) Errorf(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *logrusLogger) Warn(args ...any) {
	l.entry.Warn(args...)
}

func (l *logrusLogger) Warnf(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *logrusLogger) Fatal(args ...any) {
	l.entry.Fatal(args...)
}

func (l *logrusLogger) Fatalf(format string, args ...any) {
	l.entry.Fatalf(format, args...)
}

func NewLogger(ctx context.Context) Logger {
	factory := GetLoggerFactory()
	if factory != nil {
		return factory.CreateLogger(ctx)
	}

	return newLogrusLogger(ctx)
}

// WithRunID tags every logger created from ctx with the pipeline run id.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(runIDKey).(string)
	return value
}

func newLogrusLogger(ctx context.Context) Logger {
	logger := logrus.New()
	return &logrusLogger{entry: withContextFields(logger.WithContext(ctx), ctx)}
}

func withContextFields(entry *logrus.Entry, ctx context.Context) *logrus.Entry {
	if runID := RunID(ctx); runID != "" {
		return entry.WithField("run_id", runID)
	}
	return entry
}

type logrusFactory struct {
	logger *logrus.Logger
}

func (f *logrusFactory) CreateLogger(ctx context.Context) Logger {
	return &logrusLogger{entry: withContextFields(f.logger.WithContext(ctx), ctx)}
}

// ConfigureLogrus installs a factory backed by one shared logrus logger.
// format is "text" or "json"; unknown levels fall back to info.
func ConfigureLogrus(level string, format string) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	SetLoggerFactory(&logrusFactory{logger: logger})
}
