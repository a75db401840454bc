package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"httpblock/internal/config"
)

// NewAppLogger creates a new AppLogger writing to out with the configured level and format.
// Under CGI, stdout carries the response, so callers pass os.Stderr there.
func NewAppLogger(cfg config.LoggerConfig, out io.Writer) (AppLogger, error) {
	level, err := toSlogLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logger setup failed: %w", err)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler, err := toSlogHandler(cfg.Format, out, opts)
	if err != nil {
		return nil, fmt.Errorf("logger setup failed: %w", err)
	}

	slogLogger := slog.New(handler)
	slog.SetDefault(slogLogger)

	return NewSlogAdapter(slogLogger), nil
}

// NewDiscardLogger returns an AppLogger that drops everything. Used by tests.
func NewDiscardLogger() AppLogger {
	return NewSlogAdapter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func toSlogLevel(level config.LogLevel) (slog.Level, error) {
	switch config.LogLevel(strings.ToLower(string(level))) {
	case config.LogLevelDebug:
		return slog.LevelDebug, nil
	case config.LogLevelInfo:
		return slog.LevelInfo, nil
	case config.LogLevelWarn:
		return slog.LevelWarn, nil
	case config.LogLevelError:
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported logger level: %s", level)
	}
}

func toSlogHandler(format config.LogFormat, out io.Writer, opts *slog.HandlerOptions) (slog.Handler, error) {
	switch config.LogFormat(strings.ToLower(string(format))) {
	case config.LogFormatJSON:
		return slog.NewJSONHandler(out, opts), nil
	case config.LogFormatText:
		return slog.NewTextHandler(out, opts), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
