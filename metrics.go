package gzinga

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives counters from writers, readers and the boundary
// locator. Implement it to integrate with a monitoring system; the metrics
// package ships a Prometheus implementation.
type MetricsCollector interface {
	// RecordCheckpoint is called after a member is closed and a header is
	// written. memberBytes is the compressed size of the closed member
	// including its trailer; headerBytes the size of the new header.
	RecordCheckpoint(memberBytes, headerBytes int64, err error)

	// RecordBootstrap is called after a tail scan. windows is the number of
	// windows read, entries the size of the recovered index.
	RecordBootstrap(windows, entries int, duration time.Duration, err error)

	// RecordSeek is called after Reader.Seek. found is false when the key was
	// not indexed and the reader rewound to the start.
	RecordSeek(found bool, err error)

	// RecordBoundary is called after a boundary search. scanned is the number
	// of bytes read while searching.
	RecordBoundary(scanned int64, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCheckpoint(int64, int64, error)           {}
func (NoopMetricsCollector) RecordBootstrap(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSeek(bool, error)                         {}
func (NoopMetricsCollector) RecordBoundary(int64, error)                    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	Checkpoints      atomic.Int64
	CheckpointErrors atomic.Int64
	MemberBytes      atomic.Int64
	HeaderBytes      atomic.Int64
	Bootstraps       atomic.Int64
	BootstrapErrors  atomic.Int64
	BootstrapWindows atomic.Int64
	BootstrapNanos   atomic.Int64
	Seeks            atomic.Int64
	SeekMisses       atomic.Int64
	SeekErrors       atomic.Int64
	Boundaries       atomic.Int64
	BoundaryErrors   atomic.Int64
	BoundaryScanned  atomic.Int64
}

// RecordCheckpoint implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCheckpoint(memberBytes, headerBytes int64, err error) {
	b.Checkpoints.Add(1)
	if err != nil {
		b.CheckpointErrors.Add(1)
		return
	}
	b.MemberBytes.Add(memberBytes)
	b.HeaderBytes.Add(headerBytes)
}

// RecordBootstrap implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBootstrap(windows, _ int, duration time.Duration, err error) {
	b.Bootstraps.Add(1)
	b.BootstrapWindows.Add(int64(windows))
	b.BootstrapNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BootstrapErrors.Add(1)
	}
}

// RecordSeek implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSeek(found bool, err error) {
	b.Seeks.Add(1)
	if err != nil {
		b.SeekErrors.Add(1)
		return
	}
	if !found {
		b.SeekMisses.Add(1)
	}
}

// RecordBoundary implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBoundary(scanned int64, err error) {
	b.Boundaries.Add(1)
	b.BoundaryScanned.Add(scanned)
	if err != nil {
		b.BoundaryErrors.Add(1)
	}
}
