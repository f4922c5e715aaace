package gzinga

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with helpers for container events, so that field
// names stay consistent between writers, readers and the CLI.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// LogCheckpoint logs a checkpoint written by a Writer.
func (l *Logger) LogCheckpoint(key, off int64, entries int, err error) {
	if err != nil {
		l.Error("checkpoint failed", "key", key, "error", err)
		return
	}
	l.Debug("checkpoint written", "key", key, "offset", off, "entries", entries)
}

// LogClose logs the final header written by Writer.Close.
func (l *Logger) LogClose(size int64, entries int, err error) {
	if err != nil {
		l.Error("close failed", "error", err)
		return
	}
	l.Debug("container closed", "size", size, "entries", entries)
}

// LogBootstrap logs the outcome of the tail scan.
func (l *Logger) LogBootstrap(windows, entries int, headerAt int64, d time.Duration, err error) {
	if err != nil {
		l.Error("index bootstrap failed", "windows", windows, "error", err)
		return
	}
	if headerAt < 0 {
		l.Debug("index bootstrap found no header", "windows", windows, "duration", d)
		return
	}
	l.Debug("index bootstrapped",
		"windows", windows,
		"entries", entries,
		"header_offset", headerAt,
		"duration", d,
	)
}

// LogSeek logs a seek by key.
func (l *Logger) LogSeek(key, off int64, found bool, err error) {
	if err != nil {
		l.Error("seek failed", "key", key, "offset", off, "error", err)
		return
	}
	if !found {
		l.Debug("seek key not indexed, rewinding", "key", key)
		return
	}
	l.Debug("seek completed", "key", key, "offset", off)
}

// LogBoundary logs a boundary search.
func (l *Logger) LogBoundary(loc, boundary int64, windows int, err error) {
	if err != nil {
		l.Error("boundary search failed", "loc", loc, "error", err)
		return
	}
	l.Debug("boundary located", "loc", loc, "boundary", boundary, "windows", windows)
}
