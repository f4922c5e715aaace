// Package metrics exports gzinga counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	gzinga "github.com/eBay/GZinga"
)

// Prometheus implements gzinga.MetricsCollector.
type Prometheus struct {
	checkpoints       *prometheus.CounterVec
	containerBytes    *prometheus.CounterVec
	bootstraps        *prometheus.CounterVec
	bootstrapWindows  prometheus.Histogram
	bootstrapDuration prometheus.Histogram
	seeks             *prometheus.CounterVec
	boundaries        *prometheus.CounterVec
	boundaryScanned   prometheus.Counter
}

var _ gzinga.MetricsCollector = (*Prometheus)(nil)

// NewPrometheus creates the collectors and registers them on reg. Pass
// prometheus.DefaultRegisterer to expose them on the default handler.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		checkpoints: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gzinga_checkpoints_total",
				Help: "Checkpoints written, by result",
			},
			[]string{"result"},
		),
		containerBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gzinga_container_bytes_total",
				Help: "Container bytes written at checkpoints, by part",
			},
			[]string{"part"},
		),
		bootstraps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gzinga_bootstraps_total",
				Help: "Index bootstraps, by result",
			},
			[]string{"result"},
		),
		bootstrapWindows: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gzinga_bootstrap_windows",
				Help:    "Tail windows read per bootstrap",
				Buckets: []float64{1, 2, 4, 8, 16, 64, 256},
			},
		),
		bootstrapDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gzinga_bootstrap_duration_seconds",
				Help:    "Time spent loading the index",
				Buckets: prometheus.DefBuckets,
			},
		),
		seeks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gzinga_seeks_total",
				Help: "Seeks by key, by result (hit, miss, error)",
			},
			[]string{"result"},
		),
		boundaries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gzinga_boundaries_total",
				Help: "Split boundary searches, by result",
			},
			[]string{"result"},
		),
		boundaryScanned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gzinga_boundary_scanned_bytes_total",
				Help: "Bytes read while searching for split boundaries",
			},
		),
	}
	for _, c := range []prometheus.Collector{
		p.checkpoints,
		p.containerBytes,
		p.bootstraps,
		p.bootstrapWindows,
		p.bootstrapDuration,
		p.seeks,
		p.boundaries,
		p.boundaryScanned,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) RecordCheckpoint(memberBytes, headerBytes int64, err error) {
	p.checkpoints.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	p.containerBytes.WithLabelValues("member").Add(float64(memberBytes))
	p.containerBytes.WithLabelValues("header").Add(float64(headerBytes))
}

func (p *Prometheus) RecordBootstrap(windows, _ int, duration time.Duration, err error) {
	p.bootstraps.WithLabelValues(result(err)).Inc()
	p.bootstrapWindows.Observe(float64(windows))
	p.bootstrapDuration.Observe(duration.Seconds())
}

func (p *Prometheus) RecordSeek(found bool, err error) {
	switch {
	case err != nil:
		p.seeks.WithLabelValues("error").Inc()
	case found:
		p.seeks.WithLabelValues("hit").Inc()
	default:
		p.seeks.WithLabelValues("miss").Inc()
	}
}

func (p *Prometheus) RecordBoundary(scanned int64, err error) {
	p.boundaries.WithLabelValues(result(err)).Inc()
	p.boundaryScanned.Add(float64(scanned))
}
