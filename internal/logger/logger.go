// Package logger is the process-wide structured logger. It wraps log/slog
// with a colored text handler for terminals, a JSON handler for
// collectors, and helpers that stamp request fields from a LogContext.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN or ERROR
	Format string // text or json
	Output string // stdout, stderr or a file path
}

var (
	// level is shared by every handler built, so SetLevel takes effect
	// without rebuilding anything.
	level = new(slog.LevelVar)

	mu      sync.RWMutex
	format  string
	output  io.Writer
	color   bool
	current *slog.Logger
)

func init() {
	format, output, color = "text", os.Stdout, isTerminal(os.Stdout.Fd())
	rebuild()
}

// ParseLevel maps a level name, in any case, onto a slog level.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return 0, false
	}
}

// rebuild replaces the logger after output, color or format changed.
func rebuild() {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = NewColorTextHandler(output, opts, color)
	}
	current = slog.New(h)
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// openOutput resolves an output name to a writer and whether it supports
// color. Anything but stdout and stderr is a file, opened for append.
func openOutput(name string) (io.Writer, bool, error) {
	switch strings.ToLower(name) {
	case "", "stdout":
		return os.Stdout, isTerminal(os.Stdout.Fd()), nil
	case "stderr":
		return os.Stderr, isTerminal(os.Stderr.Fd()), nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open log file %q: %w", name, err)
	}
	return f, false, nil
}

// Init applies cfg. Empty fields keep their current value; unknown
// levels and formats are ignored.
func Init(cfg Config) error {
	if cfg.Output != "" {
		w, c, err := openOutput(cfg.Output)
		if err != nil {
			return err
		}
		mu.Lock()
		output, color = w, c
		mu.Unlock()
	}

	switch f := strings.ToLower(cfg.Format); f {
	case "text", "json":
		mu.Lock()
		format = f
		mu.Unlock()
	}

	SetLevel(cfg.Level)
	rebuild()
	return nil
}

// SetLevel changes the minimum level. Unknown names are ignored.
func SetLevel(name string) {
	if l, ok := ParseLevel(name); ok {
		level.Set(l)
	}
}

// logAt emits msg when lvl is enabled, with the LogContext fields of ctx
// ahead of args.
func logAt(ctx context.Context, lvl slog.Level, msg string, args []any) {
	if ctx == nil {
		ctx = context.Background()
	}
	l := get()
	if !l.Enabled(ctx, lvl) {
		return
	}
	if lc := FromContext(ctx); lc != nil {
		args = append(lc.fields(), args...)
	}
	l.Log(ctx, lvl, msg, args...)
}

// Debug logs at debug level. args are slog attributes or key/value pairs.
func Debug(msg string, args ...any) { logAt(context.Background(), slog.LevelDebug, msg, args) }

// Info logs at info level.
func Info(msg string, args ...any) { logAt(context.Background(), slog.LevelInfo, msg, args) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { logAt(context.Background(), slog.LevelWarn, msg, args) }

// Error logs at error level.
func Error(msg string, args ...any) { logAt(context.Background(), slog.LevelError, msg, args) }

// DebugCtx logs at debug level with the request fields carried by ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelDebug, msg, args)
}

// WarnCtx logs at warn level with the request fields carried by ctx.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelWarn, msg, args)
}

// ErrorCtx logs at error level with the request fields carried by ctx.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelError, msg, args)
}
