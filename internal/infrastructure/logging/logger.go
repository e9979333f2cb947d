package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/riceops/production-planning/internal/application/common"
	"github.com/riceops/production-planning/internal/infrastructure/config"
)

// SlogLogger adapts log/slog to common.Logger.
// Levels are the upper-case names handlers use: DEBUG, INFO, WARNING, ERROR.
type SlogLogger struct {
	logger *slog.Logger
}

// New builds a logger from configuration. The returned closer releases the
// log file when output is "file" and is a no-op otherwise.
func New(cfg config.LoggingConfig) (*SlogLogger, io.Closer, error) {
	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	switch cfg.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
		}
		out, closer = f, f
	default:
		return nil, nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	return NewWithWriter(out, cfg), closer, nil
}

// NewWithWriter builds a logger writing to w
func NewWithWriter(w io.Writer, cfg config.LoggingConfig) *SlogLogger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.IncludeCaller,
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &SlogLogger{logger: slog.New(handler)}
}

// Log implements common.Logger. Metadata keys are emitted in sorted order.
func (l *SlogLogger) Log(level, message string, metadata map[string]interface{}) {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, metadata[k]))
	}
	l.logger.LogAttrs(context.Background(), ParseLevel(level), message, attrs...)
}

// Slog exposes the underlying logger
func (l *SlogLogger) Slog() *slog.Logger {
	return l.logger
}

// ParseLevel maps configuration and handler level names to slog levels.
// Unknown names log at INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

var _ common.Logger = (*SlogLogger)(nil)
