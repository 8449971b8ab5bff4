// Package logger builds the structured zap logger shared by the crawler
// binaries and the API server.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON production logger at the given level. An empty level
// means info.
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil

	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("service", "price-list-crawler")), nil
}

// Must is New for program entry points; an invalid level falls back to info.
func Must(level string) *zap.Logger {
	log, err := New(level)
	if err == nil {
		return log
	}
	fallback, ferr := New("info")
	if ferr != nil {
		return zap.NewNop()
	}
	fallback.Warn("invalid log level, using info", zap.String("level", level), zap.Error(err))
	return fallback
}
