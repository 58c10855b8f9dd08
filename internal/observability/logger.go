package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

// LogConfig controls the process-wide slog handler. Verbose adds source
// locations and, when Level is empty, logs at debug.
type LogConfig struct {
	Level   string
	Verbose bool
	Output  io.Writer
}

// Logger tags every record with the component that emitted it and the
// dispatch ID carried by the context, if any.
type Logger struct {
	base      *slog.Logger
	component string
}

// Init installs a text handler as the slog default. Output defaults to
// stderr so rendered results on stdout stay clean.
func Init(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	level := parseLevel(cfg.Level)
	if cfg.Verbose && strings.TrimSpace(cfg.Level) == "" {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Verbose,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func Component(name string) *Logger {
	return &Logger{base: slog.Default(), component: name}
}

func (l *Logger) Debug(ctx context.Context, msg string, attrs ...any) {
	l.log(ctx, slog.LevelDebug, msg, attrs...)
}

func (l *Logger) Info(ctx context.Context, msg string, attrs ...any) {
	l.log(ctx, slog.LevelInfo, msg, attrs...)
}

func (l *Logger) Warn(ctx context.Context, msg string, attrs ...any) {
	l.log(ctx, slog.LevelWarn, msg, attrs...)
}

func (l *Logger) Error(ctx context.Context, msg string, attrs ...any) {
	l.log(ctx, slog.LevelError, msg, attrs...)
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, attrs ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.base.Enabled(ctx, level) {
		return
	}
	args := make([]any, 0, len(attrs)+6)
	args = append(args, "component", l.component)
	args = append(args, "function", caller(4))
	if id := DispatchIDFromContext(ctx); id != "" {
		args = append(args, "dispatch_id", id)
	}
	args = append(args, attrs...)
	l.base.Log(ctx, level, msg, args...)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func caller(depth int) string {
	pc := make([]uintptr, 1)
	n := runtime.Callers(depth, pc)
	if n == 0 {
		return "unknown"
	}
	frame, _ := runtime.CallersFrames(pc[:n]).Next()
	if frame.Function == "" {
		return "unknown"
	}
	parts := strings.Split(frame.Function, "/")
	return parts[len(parts)-1]
}

// AttrErr is a convenience for logging a possibly nil error.
func AttrErr(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
