// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextKey represents keys for context values
type ContextKey string

const (
	// Context keys for logging
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyTraceID   ContextKey = "trace_id"
	ContextKeyClientIP  ContextKey = "client_ip"
	ContextKeyUserAgent ContextKey = "user_agent"
	ContextKeyMethod    ContextKey = "method"
	ContextKeyPath      ContextKey = "path"
	ContextKeyOrderID   ContextKey = "order_id"
	ContextKeyTaskID    ContextKey = "task_id"
)

type loggerKey struct{}

// Config holds logger configuration
type Config struct {
	Level          string
	Format         string // json, text
	Output         string // stdout, stderr, file:<path>
	AddSource      bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Writer overrides Output when set
	Writer io.Writer
}

// Logger wraps slog.Logger with context-aware helpers
type Logger struct {
	*slog.Logger
	config Config
}

// New creates a logger whose records carry request-scoped context values
// and have secrets and customer phone numbers redacted.
func New(cfg Config) *Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			return replaceAttr(cfg, groups, a)
		},
	}

	writer := cfg.Writer
	if writer == nil {
		writer = getWriter(cfg.Output)
	}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = NewPrettyTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	handler = NewSanitizationHandler(NewContextHandler(handler))

	var attrs []slog.Attr
	if cfg.ServiceName != "" {
		attrs = append(attrs, slog.String("service", cfg.ServiceName))
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, slog.String("version", cfg.ServiceVersion))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, slog.String("env", cfg.Environment))
	}
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}

	return &Logger{
		Logger: slog.New(handler),
		config: cfg,
	}
}

// SetDefault installs l as the process-wide slog default
func (l *Logger) SetDefault() *Logger {
	slog.SetDefault(l.Logger)
	return l
}

// Slog returns the underlying *slog.Logger
func (l *Logger) Slog() *slog.Logger {
	return l.Logger
}

// WithContext returns a logger carrying the context values as attributes
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	attrs := extractContextAttrs(ctx)
	if len(attrs) == 0 {
		return l.Logger
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return l.Logger.With(args...)
}

// FromContext extracts the logger from ctx, falling back to slog.Default.
// Context values are attached by the handler when a *Context method is used.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return l.Logger
	}
	return slog.Default()
}

// WithLogger adds logger to context
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// WithValue stores a loggable value under key
func WithValue(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

// RequestIDFromContext returns the request id, if any
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getWriter(output string) io.Writer {
	switch {
	case output == "stderr":
		return os.Stderr
	case strings.HasPrefix(output, "file:"):
		filename := strings.TrimPrefix(output, "file:")
		file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return os.Stdout
		}
		return file
	default:
		return os.Stdout
	}
}

var contextKeys = []ContextKey{
	ContextKeyRequestID,
	ContextKeyTraceID,
	ContextKeyClientIP,
	ContextKeyUserAgent,
	ContextKeyMethod,
	ContextKeyPath,
	ContextKeyOrderID,
	ContextKeyTaskID,
}

func extractContextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	for _, key := range contextKeys {
		val := ctx.Value(key)
		if val == nil {
			continue
		}
		name := string(key)
		switch v := val.(type) {
		case string:
			if v != "" {
				attrs = append(attrs, slog.String(name, v))
			}
		case uuid.UUID:
			attrs = append(attrs, slog.String(name, v.String()))
		case time.Duration:
			attrs = append(attrs, slog.Duration(name, v))
		default:
			attrs = append(attrs, slog.Any(name, v))
		}
	}
	return attrs
}

func replaceAttr(cfg Config, _ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.UTC().Format(time.RFC3339Nano))
		}
	}

	// Some aggregators expect "severity"
	if a.Key == slog.LevelKey && cfg.Format != "text" {
		a.Key = "severity"
	}

	if strings.HasSuffix(a.Key, "_ms") {
		if d, ok := a.Value.Any().(time.Duration); ok {
			a.Value = slog.Float64Value(float64(d.Microseconds()) / 1000)
		}
	}

	return a
}
