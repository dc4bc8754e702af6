// Package logger wraps log/slog behind a small structured interface shared
// by every component in the project.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// callerSkip counts the frames between runtime.Callers and the caller of an
// exported logging method: runtime.Callers -> log -> Debug/Info/Warn/Error.
const callerSkip = 3

// Logger is the logging surface handed to components. Methods take a context
// first so handlers can pick up request-scoped values.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	// Fatal logs at error level and exits the process.
	Fatal(ctx context.Context, msg string, fields ...Field)

	// Named returns a logger tagging every record with a component name.
	// Nested names are joined with dots.
	Named(name string) Logger
}

// Field is a typed key-value pair attached to a record.
type Field struct {
	Key   string
	Value any
}

// Field constructors.
func String(key, val string) Field                 { return Field{Key: key, Value: val} }
func Int(key string, val int) Field                { return Field{Key: key, Value: val} }
func Int64(key string, val int64) Field            { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field        { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field              { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val.String()} }
func Any(key string, val any) Field                { return Field{Key: key, Value: val} }
func Err(err error) Field                          { return Field{Key: "error", Value: err} }

// slogLogger routes records to a shared slog.Handler.
type slogLogger struct {
	handler slog.Handler
	name    string
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if !l.handler.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(callerSkip, pcs[:])
	rec := slog.NewRecord(time.Now(), level, msg, pcs[0])
	if l.name != "" {
		rec.AddAttrs(slog.String("component", l.name))
	}
	for _, f := range fields {
		rec.AddAttrs(slog.Any(f.Key, f.Value))
	}
	_ = l.handler.Handle(ctx, rec)
}

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelDebug, msg, fields)
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, fields)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelWarn, msg, fields)
}

func (l *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
}

func (l *slogLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
	os.Exit(1)
}

func (l *slogLogger) Named(name string) Logger {
	child := name
	if l.name != "" {
		child = l.name + "." + name
	}
	return &slogLogger{handler: l.handler, name: child}
}

var (
	global   Logger
	levelVar slog.LevelVar
)

// Init sets up the global logger writing JSON records to stderr at the given
// level. An empty level means info.
func Init(level string) error {
	if err := SetLevelString(level); err != nil {
		return err
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: &levelVar, AddSource: true})
	global = &slogLogger{handler: h}
	return nil
}

// Get returns the global logger. When Init was never called it falls back to
// an info-level logger rather than failing, so early startup paths and tests
// can always log.
func Get() Logger {
	if global == nil {
		_ = Init("info")
	}
	return global
}

// Named returns a component-named logger off the global one.
func Named(name string) Logger {
	return Get().Named(name)
}

// SetLevel updates the level of the global handler.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString parses and applies a textual level. Accepts debug, info,
// warn/warning and error, case-insensitive; empty selects info.
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(slog.LevelDebug)
	case "", "info":
		SetLevel(slog.LevelInfo)
	case "warn", "warning":
		SetLevel(slog.LevelWarn)
	case "error":
		SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", level)
	}
	return nil
}
