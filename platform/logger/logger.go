// Package logger wraps log/slog with the handler selection and event helpers
// used by the API and scheduler processes.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TenantIDKey  contextKey = "tenant_id"
)

// contextFields lists the context keys copied onto records by WithContext, in output order.
var contextFields = []contextKey{RequestIDKey, UserIDKey, TenantIDKey}

type Logger struct {
	*slog.Logger
}

// New logs to stdout: text at debug level in development, JSON at info elsewhere.
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

func NewWithWriter(env string, w io.Writer) *Logger {
	if strings.EqualFold(env, "development") {
		return &Logger{Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	}
	return &Logger{Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))}
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return NewWithWriter("production", io.Discard)
}

// WithContext returns a child logger carrying the request, user and tenant IDs found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	var attrs []any
	for _, key := range contextFields {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	if len(attrs) == 0 {
		return l
	}
	return &Logger{Logger: l.With(attrs...)}
}

func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("client_ip", clientIP),
	)
}

func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}

// AgingSweep records the outcome of one overdue sweep run.
func (l *Logger) AgingSweep(evaluated, overdue, notified int, latencyMs float64) {
	l.Info("aging_sweep",
		slog.Int("evaluated", evaluated),
		slog.Int("overdue", overdue),
		slog.Int("notified", notified),
		slog.Float64("latency_ms", latencyMs),
	)
}

// OverdueNotice records one delivery attempt of an overdue notice on a channel
// ("in_app" or "email"). A nil err means it was delivered.
func (l *Logger) OverdueNotice(leadID, agentID, channel string, err error) {
	if err != nil {
		l.Error("overdue_notice",
			slog.String("lead_id", leadID),
			slog.String("agent_id", agentID),
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
		return
	}
	l.Info("overdue_notice",
		slog.String("lead_id", leadID),
		slog.String("agent_id", agentID),
		slog.String("channel", channel),
	)
}
