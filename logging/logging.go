// Package logging builds the slog.Logger used across the offline store:
// colored text output in development and test, JSON with file rotation in
// production.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures the logger.
type Config struct {
	// Environment is "development", "production", or "test".
	Environment string

	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Defaults to "info" in development/test and "error" in production.
	Level string

	// Directory for log files. Only used in production. Defaults to "logs".
	Directory string

	// MaxSizeMB is the max size in megabytes before rotation. Defaults to 20.
	MaxSizeMB int

	// MaxBackups is the max number of old log files to keep. Defaults to 3.
	MaxBackups int

	// MaxAgeDays is the max age in days before a log file is deleted.
	// Defaults to 28.
	MaxAgeDays int

	// AppName is used in the log filename. Defaults to "guruai".
	AppName string
}

// NewLogger creates a configured slog.Logger based on the environment.
//
// Development and Test:
//   - Logs to stdout only, colored text output
//
// Production:
//   - Logs to both stdout and a rotating file (lumberjack), JSON format
func NewLogger(cfg Config) *slog.Logger {
	level := resolveLevel(cfg)

	if cfg.Environment == "production" {
		return newProdLogger(level, cfg)
	}
	return newDevLogger(level)
}

// resolveLevel determines the log level from config, env, or defaults.
func resolveLevel(cfg Config) slog.Level {
	levelStr := cfg.Level

	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		levelStr = envLevel
	}

	if levelStr == "" {
		if cfg.Environment == "production" {
			levelStr = "error"
		} else {
			levelStr = "info"
		}
	}

	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newDevLogger creates a colored text logger for development/test.
func newDevLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}
	return slog.New(newColorHandler(os.Stdout, opts))
}

// newProdLogger creates a JSON logger that writes to stdout and a rotating
// file.
func newProdLogger(level slog.Level, cfg Config) *slog.Logger {
	appName := cfg.AppName
	if appName == "" {
		appName = "guruai"
	}

	dir := cfg.Directory
	if dir == "" {
		dir = "logs"
	}

	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 20
	}

	maxBackups := cfg.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 3
	}

	maxAge := cfg.MaxAgeDays
	if maxAge <= 0 {
		maxAge = 28
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		// Stdout only if the log directory cannot be created.
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(dir, appName+".log"),
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Compress:   true,
	}

	multiWriter := io.MultiWriter(os.Stdout, rotator)
	return slog.New(slog.NewJSONHandler(multiWriter, opts))
}

// Fatal logs a fatal message and exits (slog has no Fatal level).
func Fatal(logger *slog.Logger, msg string, args ...any) {
	logger.Error(msg, args...)
	os.Exit(1)
}
