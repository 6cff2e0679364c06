// Package logger provides structured logging with context support.
//
// A request context carries the base logger (WithLogger) plus scoped fields
// (WithFields, WithDocument). FromContext combines both with the trace and
// caller stored by the HTTP middleware, so call sites only pass event data.
package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "backoffice/internal/core/context"
)

// Logger wraps zap.SugaredLogger with context-aware logging.
type Logger struct {
	*zap.SugaredLogger
}

// Config holds logger configuration.
type Config struct {
	Level       string // debug, info, warn, error
	Development bool
	OutputPaths []string
}

func (c Config) zapConfig() zap.Config {
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc.EncoderConfig.TimeKey = "ts"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if len(c.OutputPaths) > 0 {
		zc.OutputPaths = c.OutputPaths
	}
	return zc
}

// New creates a new Logger from configuration. An unknown level falls back to info.
func New(cfg Config) (*Logger, error) {
	zl, err := cfg.zapConfig().Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{zl.Sugar()}, nil
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default returns a process-wide info logger writing to stdout.
func Default() *Logger {
	defaultOnce.Do(func() {
		l, err := New(Config{Level: "info", OutputPaths: []string{"stdout"}})
		if err != nil {
			l = Nop()
		}
		defaultLogger = l
	})
	return defaultLogger
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

// With adds key-value pairs to logger.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{l.SugaredLogger.With(keysAndValues...)}
}

// WithComponent adds component name to logger.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

// WithContext adds trace, caller and scoped fields from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	var kv []any
	if trace, ok := appctx.TraceFrom(ctx); ok {
		kv = append(kv, trace.LogFields()...)
	}
	if user := appctx.GetUser(ctx); user != nil {
		kv = append(kv, "user_id", user.UserID, "company_id", user.CompanyID)
	}
	kv = append(kv, scopedFields(ctx)...)
	if len(kv) == 0 {
		return l
	}
	return l.With(kv...)
}

type (
	loggerKey struct{}
	fieldsKey struct{}
)

// WithLogger adds Logger to context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithFields returns a context whose log lines carry keysAndValues in addition
// to the fields already scoped on ctx.
func WithFields(ctx context.Context, keysAndValues ...any) context.Context {
	prev := scopedFields(ctx)
	merged := make([]any, 0, len(prev)+len(keysAndValues))
	merged = append(merged, prev...)
	merged = append(merged, keysAndValues...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// WithDocument scopes log lines to one document, e.g. a goods receipt after its
// number has been allocated.
func WithDocument(ctx context.Context, docType, docID, number string) context.Context {
	kv := []any{"doc_type", docType, "doc_id", docID}
	if number != "" {
		kv = append(kv, "doc_number", number)
	}
	return WithFields(ctx, kv...)
}

func scopedFields(ctx context.Context) []any {
	kv, _ := ctx.Value(fieldsKey{}).([]any)
	return kv
}

// FromContext returns the context logger, or the default one, enriched by WithContext.
func FromContext(ctx context.Context) *Logger {
	l, ok := ctx.Value(loggerKey{}).(*Logger)
	if !ok {
		l = Default()
	}
	return l.WithContext(ctx)
}

// Debug logs at debug level from context.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Debugw(msg, keysAndValues...)
}

// Info logs at info level from context.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Infow(msg, keysAndValues...)
}

// Warn logs at warn level from context.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Warnw(msg, keysAndValues...)
}

// Error logs at error level from context.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Errorw(msg, keysAndValues...)
}

// Fatal logs at fatal level and exits.
func Fatal(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Fatalw(msg, keysAndValues...)
}
