package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/config"
	"github.com/rs/zerolog"
)

type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates a structured logger with validation and defaults
func NewLogger(cfg *config.LoggingConfig) (*Logger, error) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}

	format := cfg.Format
	if format == "" {
		format = "json"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "amazin-bookstore"
	}

	// Validate log level early to fail fast
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %v", level, err)
	}

	var output io.Writer
	switch format {
	case "console":
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	case "json":
		// Production: stdout plus a daily file under ./logs
		logDir := "./logs"
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %v", err)
		}

		logFile := fmt.Sprintf("%s/%s-%s.log", logDir, serviceName, time.Now().Format("2006-01-02"))
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %v", err)
		}

		output = io.MultiWriter(os.Stdout, file)
	default:
		return nil, fmt.Errorf("invalid log format '%s': expected json or console", format)
	}

	return New(output, logLevel, serviceName), nil
}

// New builds a logger on an arbitrary writer. Tests use it to capture output.
func New(w io.Writer, level zerolog.Level, serviceName string) *Logger {
	return &Logger{
		logger: zerolog.New(w).
			Level(level).
			With().
			Timestamp().
			Str("service", serviceName).
			Logger(),
	}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

func (l *Logger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

func (l *Logger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

func (l *Logger) Error(msg string) {
	l.logger.Error().Msg(msg)
}

func (l *Logger) Fatal(msg string) {
	l.logger.Fatal().Msg(msg)
}

// WithComponent returns a logger instance with component context
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// WithField returns a child logger that adds key=value to every entry
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{
		logger: l.logger.With().Interface(key, value).Logger(),
	}
}
