package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Log levels supported by the logger
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// logFileName is the file created inside the log directory.
const logFileName = "cfoundation.log"

// Logger provides structured logging with persistent attributes.
// It is safe for concurrent use.
type Logger struct {
	logger *slog.Logger
	sink   *sink // shared with child loggers
}

// sink owns the destination a Logger tree writes to.
type sink struct {
	mu     sync.Mutex
	closer io.Closer // nil for writers the logger does not own
}

func (s *sink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// syncCloser flushes a file to disk before closing it.
type syncCloser struct{ f *os.File }

func (c syncCloser) Close() error {
	if err := c.f.Sync(); err != nil {
		_ = c.f.Close()
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := c.f.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// NewLogger creates a Logger that writes JSON-formatted logs to
// {dir}/cfoundation.log. If dir is empty, logs are written to stderr.
//
// The level parameter controls which messages are logged:
//   - DEBUG: All messages
//   - INFO: Info, Warn, and Error messages
//   - WARN: Warn and Error messages
//   - ERROR: Only Error messages
func NewLogger(dir string, level string) (*Logger, error) {
	if dir == "" {
		return New(os.Stderr, level), nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return newOwned(file, syncCloser{file}, level), nil
}

// NewRotatingLogger is like NewLogger but rotates {dir}/cfoundation.log
// according to cfg. An empty dir logs to stderr without rotation.
func NewRotatingLogger(dir, level string, cfg RotationConfig) (*Logger, error) {
	if dir == "" {
		return New(os.Stderr, level), nil
	}

	rw, err := NewRotatingWriter(filepath.Join(dir, logFileName), cfg)
	if err != nil {
		return nil, err
	}
	return newOwned(rw, rw, level), nil
}

// New creates a Logger that writes JSON lines to w. Close does not close w.
func New(w io.Writer, level string) *Logger {
	return newOwned(w, nil, level)
}

func newOwned(w io.Writer, closer io.Closer, level string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &Logger{
		logger: slog.New(handler),
		sink:   &sink{closer: closer},
	}
}

// parseLevel converts a string log level to slog.Level.
// Defaults to INFO if the level string is not recognized.
func parseLevel(level string) slog.Level {
	switch ParseLevel(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent returns a child Logger tagged with a component name
// (e.g. "timers", "dispatch", "notify").
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

// WithTimer returns a child Logger tagged with a timer identifier.
func (l *Logger) WithTimer(timerID string) *Logger {
	return l.With("timer_id", timerID)
}

// WithQueue returns a child Logger tagged with an executor label.
func (l *Logger) WithQueue(label string) *Logger {
	return l.With("queue", label)
}

// With returns a child Logger carrying the given key-value attributes.
// Pairs whose key is not a string are skipped.
func (l *Logger) With(args ...any) *Logger {
	attrs := make([]any, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			attrs = append(attrs, slog.Any(key, args[i+1]))
		}
	}
	if len(attrs) == 0 {
		return l
	}
	return &Logger{logger: l.logger.With(attrs...), sink: l.sink}
}

// Debug logs a message at DEBUG level with optional key-value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args)
}

// Info logs a message at INFO level with optional key-value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args)
}

// Warn logs a message at WARN level with optional key-value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args)
}

// Error logs a message at ERROR level with optional key-value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args)
}

func (l *Logger) log(level slog.Level, msg string, args []any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, msg, args...)
}

// Close flushes and closes the log destination if the logger owns it. It is
// shared by every child logger, and calls after the first are no-ops.
func (l *Logger) Close() error {
	if err := l.sink.close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

// NopLogger returns a Logger that discards all log output.
func NopLogger() *Logger {
	return New(io.Discard, LevelError)
}

// ParseLevel normalizes a level string to one of the Level constants.
// Returns LevelInfo if the level string is not recognized.
func ParseLevel(level string) string {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn:
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// ValidLevels returns the list of valid log level strings.
func ValidLevels() []string {
	return []string{LevelDebug, LevelInfo, LevelWarn, LevelError}
}
