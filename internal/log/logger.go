// Package log is the process-wide structured logger: console or rotating file
// output, an in-memory tail of recent lines for the admin API, and HTTP
// request logging middleware.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

type Config struct {
	Mode   string // "console" or "file"
	Level  string // "debug", "info", "warn", "error"
	Format string // "text" or "json"

	FilePath   string
	MaxSizeMB  int
	MaxBackups int

	// BufferLines is the size of the in-memory tail; 0 disables it.
	BufferLines int
}

func DefaultConfig() *Config {
	return &Config{
		Mode:        "console",
		Level:       "info",
		Format:      "text",
		FilePath:    "sareeone.log",
		MaxSizeMB:   50,
		MaxBackups:  3,
		BufferLines: 500,
	}
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
	tail          *RingBuffer
	output        io.Closer
)

// Init replaces the global logger. Calling it again closes the previous log
// file, if any.
func Init(cfg *Config) error {
	level := ParseLevel(cfg.Level)

	var (
		w      io.Writer = os.Stdout
		closer io.Closer
	)
	switch cfg.Mode {
	case "", "console":
	case "file":
		rw, err := newRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxBackups)
		if err != nil {
			return err
		}
		w, closer = rw, rw
	default:
		return fmt.Errorf("unknown log mode %q", cfg.Mode)
	}

	var handler slog.Handler = NewHandler(w, cfg.Format, level)
	var buffer *RingBuffer
	if cfg.BufferLines > 0 {
		buffer = NewRingBuffer(cfg.BufferLines)
		handler = NewBufferHandler(handler, buffer, level)
	}

	mu.Lock()
	prev := output
	defaultLogger = slog.New(handler)
	tail = buffer
	output = closer
	mu.Unlock()

	slog.SetDefault(defaultLogger)
	if prev != nil {
		prev.Close()
	}
	return nil
}

// Close flushes and closes the log file when logging to a file.
func Close() error {
	mu.Lock()
	c := output
	output = nil
	mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Close()
}

func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if defaultLogger == nil {
		return slog.Default()
	}
	return defaultLogger
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

func Log(ctx context.Context, level slog.Level, msg string, args ...any) {
	Logger().Log(ctx, level, msg, args...)
}

// Recent returns up to n of the most recent buffered lines, oldest first.
// It returns nil when the buffer is disabled.
func Recent(n int) []string {
	mu.RLock()
	defer mu.RUnlock()
	if tail == nil {
		return nil
	}
	return tail.Lines(n)
}

// BufferStats reports how many lines are buffered and the buffer capacity.
// ok is false when the buffer is disabled.
func BufferStats() (total, capacity int, ok bool) {
	mu.RLock()
	defer mu.RUnlock()
	if tail == nil {
		return 0, 0, false
	}
	return tail.Total(), tail.Capacity(), true
}
