package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	// RequestIDKey carries the per-request correlation id.
	RequestIDKey contextKey = "request_id"
	// UserIDKey carries the authenticated user's id.
	UserIDKey contextKey = "user_id"
)

// Config controls the process logger.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

// Logger wraps zerolog for application logging.
type Logger struct {
	logger zerolog.Logger
}

// New builds a Logger. Unknown levels fall back to info.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var w io.Writer = output
	if cfg.Format == "text" {
		w = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	return &Logger{
		logger: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

// Zerolog exposes the underlying logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.logger
}

// SetGlobalLogger installs the logger behind github.com/rs/zerolog/log.
func SetGlobalLogger(logger *Logger) {
	log.Logger = logger.logger
}

// WithContext returns the global logger enriched with request-scoped values.
func WithContext(ctx context.Context) *zerolog.Logger {
	logger := log.With()

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		logger = logger.Str("request_id", requestID)
	}
	if userID, ok := ctx.Value(UserIDKey).(int64); ok {
		logger = logger.Int64("user_id", userID)
	}

	contextLogger := logger.Logger()
	return &contextLogger
}
