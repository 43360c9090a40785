package config

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the JSON logger used by every binary. With LOG_FILE set,
// records also go to a size-rotated file; the returned closer releases it.
func NewLogger(cfg Config, stdout io.Writer) (*slog.Logger, io.Closer) {
	if stdout == nil {
		stdout = os.Stdout
	}

	var writer io.Writer = stdout
	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
			Compress:   true,
		}
		writer = io.MultiWriter(stdout, rotating)
		closer = rotating
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: cfg.LogLevel})
	return slog.New(handler).With("app", cfg.AppName), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
