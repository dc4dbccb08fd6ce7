package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
)

// moduler is implemented by components that want to identify themselves in
// log lines (most Face/Controller/Fetcher types implement String()).
type moduler interface {
	String() string
}

var current atomic.Pointer[slog.Logger]
var currentLevel atomic.Int64

func init() {
	currentLevel.Store(int64(LevelInfo))
	current.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(LevelInfo),
	})))
}

// Default returns the process-wide logger.
func Default() *slog.Logger {
	return current.Load()
}

// SetLevel sets the minimum level that will be emitted.
func SetLevel(level Level) {
	currentLevel.Store(int64(level))
	current.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(level),
	})))
}

// IsAllowed reports whether a log line at level would currently be emitted.
// Callers use this to skip building expensive log arguments (e.g. Trace
// lines in hot packet-processing paths).
func IsAllowed(level Level) bool {
	return int64(level) >= currentLevel.Load()
}

func slogLevel(level Level) slog.Level {
	return slog.Level(level)
}

func moduleName(mod any) string {
	if mod == nil {
		return ""
	}
	if m, ok := mod.(moduler); ok {
		return m.String()
	}
	return fmt.Sprintf("%T", mod)
}

func log(ctx context.Context, level Level, mod any, msg string, kv ...any) {
	if !IsAllowed(level) {
		return
	}
	args := make([]any, 0, len(kv)+2)
	if name := moduleName(mod); name != "" {
		args = append(args, "module", name)
	}
	args = append(args, kv...)
	current.Load().Log(ctx, slogLevel(level), msg, args...)
}

// Trace logs at LevelTrace.
func Trace(mod any, msg string, kv ...any) { log(context.Background(), LevelTrace, mod, msg, kv...) }

// Debug logs at LevelDebug.
func Debug(mod any, msg string, kv ...any) { log(context.Background(), LevelDebug, mod, msg, kv...) }

// Info logs at LevelInfo.
func Info(mod any, msg string, kv ...any) { log(context.Background(), LevelInfo, mod, msg, kv...) }

// Warn logs at LevelWarn.
func Warn(mod any, msg string, kv ...any) { log(context.Background(), LevelWarn, mod, msg, kv...) }

// Error logs at LevelError. The first argument after mod and msg is
// conventionally the error being reported, e.g. Error(c, "failed", "err", err).
func Error(mod any, msg string, kv ...any) { log(context.Background(), LevelError, mod, msg, kv...) }

// Fatal logs at LevelFatal and then exits the process.
func Fatal(mod any, msg string, kv ...any) {
	log(context.Background(), LevelFatal, mod, msg, kv...)
	os.Exit(1)
}
