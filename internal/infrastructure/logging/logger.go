package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/config"
)

const serviceName = "smarthome"

// Logger wraps slog.Logger with the service defaults applied.
//
// All methods are safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to the configured output.
//
// Parameters:
//   - cfg: Logging configuration
//   - version: Build version added to every entry
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}
	return NewWithWriter(cfg, version, output)
}

// NewWithWriter creates a Logger that writes to w instead of a standard stream.
func NewWithWriter(cfg config.LoggingConfig, version string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// parseLevel converts a string log level to slog.Level.
// Unrecognised values fall back to info.
func parseLevel(level string) slog.Level {
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

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	mqttLogger := logger.With("component", "mqtt")
//	mqttLogger.Info("connected") // Includes component=mqtt
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default creates a logger for use before configuration is loaded.
// It writes JSON to stdout at info level.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev")
}

// Discard returns a logger that drops everything. Intended for tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
