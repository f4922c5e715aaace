package gzinga

import (
	"log/slog"

	"github.com/klauspost/compress/flate"
)

const (
	// DefaultScanWindow is the window used by the tail bootstrap and the
	// boundary locator.
	DefaultScanWindow = 32 * 1024

	// DefaultBufferSize is the size of the writer's output buffer. Member
	// trailers are appended to the tail of this buffer when they fit.
	DefaultBufferSize = 32 * 1024
)

type options struct {
	level      int
	bufferSize int
	os         byte
	scanWindow int
	bootstrap  bool
	logger     *Logger
	metrics    MetricsCollector
}

// Option configures writers, readers and the boundary locator. Options that
// do not apply to a given constructor are ignored.
type Option func(*options)

// WithLevel sets the DEFLATE compression level (flate.NoCompression through
// flate.BestCompression, or flate.DefaultCompression).
func WithLevel(level int) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithBufferSize sets the writer's output buffer size.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithOS overrides the OS byte written in every header. Readers take the OS
// byte from the first header, so this only changes what is written.
func WithOS(os byte) Option {
	return func(o *options) {
		o.os = os
	}
}

// WithScanWindow sets the window size used when searching for headers. It is
// raised to the minimum that can hold a header and make progress.
func WithScanWindow(n int) Option {
	return func(o *options) {
		if n < headerLen+1 {
			n = headerLen + 1
		}
		o.scanWindow = n
	}
}

// WithoutBootstrap opens a Reader for sequential access only, skipping the
// tail scan that loads the index.
func WithoutBootstrap() Option {
	return func(o *options) {
		o.bootstrap = false
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			o.logger = NoopLogger()
			return
		}
		o.logger = &Logger{Logger: l}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

func defaultOptions() options {
	return options{
		level:      flate.DefaultCompression,
		bufferSize: DefaultBufferSize,
		os:         defaultOS,
		scanWindow: DefaultScanWindow,
		bootstrap:  true,
		logger:     NoopLogger(),
		metrics:    NoopMetricsCollector{},
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
