// Package logger provides leveled, structured logging on top of zerolog.
package logger

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Level is a logging severity.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// TraceIDFn extracts a trace identifier from a context.
type TraceIDFn func(ctx context.Context) string

// LoggerInterface is what packages depend on. Args are alternating
// key/value pairs.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	Debugc(ctx context.Context, caller int, msg string, args ...any)
	Infoc(ctx context.Context, caller int, msg string, args ...any)
	Warnc(ctx context.Context, caller int, msg string, args ...any)
	Errorc(ctx context.Context, caller int, msg string, args ...any)
}

var _ LoggerInterface = (*Logger)(nil)

// Logger writes JSON (or console) records through zerolog.
type Logger struct {
	zl      zerolog.Logger
	traceID TraceIDFn
}

// New builds a JSON logger writing to w. A nil traceIDFn reads the
// OpenTelemetry span from the context.
func New(w io.Writer, level Level, serviceName string, traceIDFn TraceIDFn) *Logger {
	if traceIDFn == nil {
		traceIDFn = otelTraceID
	}
	zl := zerolog.New(w).
		Level(level.zerolog()).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	return &Logger{zl: zl, traceID: traceIDFn}
}

// NewConsole builds a human-readable logger for terminals.
func NewConsole(w io.Writer, level Level, serviceName string) *Logger {
	return New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}, level, serviceName, nil)
}

// Nop returns a logger that drops everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), traceID: otelTraceID}
}

// With returns a child logger carrying a component field.
func (l *Logger) With(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger(), traceID: l.traceID}
}

// Zerolog exposes the underlying logger for middleware that needs it.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zerolog.DebugLevel, -1, msg, args)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zerolog.InfoLevel, -1, msg, args)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zerolog.WarnLevel, -1, msg, args)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zerolog.ErrorLevel, -1, msg, args)
}

// Debugc logs with the caller location, skipping caller extra frames.
func (l *Logger) Debugc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, zerolog.DebugLevel, caller, msg, args)
}

func (l *Logger) Infoc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, zerolog.InfoLevel, caller, msg, args)
}

func (l *Logger) Warnc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, zerolog.WarnLevel, caller, msg, args)
}

func (l *Logger) Errorc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, zerolog.ErrorLevel, caller, msg, args)
}

func (l *Logger) write(ctx context.Context, level zerolog.Level, caller int, msg string, args []any) {
	e := l.zl.WithLevel(level)
	if e == nil {
		return
	}
	if ctx != nil {
		if id := l.traceID(ctx); id != "" {
			e = e.Str("trace_id", id)
		}
	}
	if len(args)%2 == 1 {
		args = append(args, "MISSING")
	}
	if len(args) > 0 {
		e = e.Fields(args)
	}
	if caller >= 0 {
		// skips write and the exported method.
		e = e.Caller(caller + 2)
	}
	e.Msg(msg)
}

func otelTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
