// Package metrics exposes meshing pipeline counters to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-mesh/internal/logger"
)

const namespace = "meshing"

// Metrics holds the collectors updated by the worker pool.
type Metrics struct {
	registry *prometheus.Registry

	SectionsBuilt  prometheus.Counter
	SectionsFailed prometheus.Counter
	PassesBaked    *prometheus.CounterVec
	PassesEmpty    *prometheus.CounterVec
	BakedBytes     *prometheus.CounterVec
	BuildDuration  prometheus.Histogram
	ScratchBytes   prometheus.Gauge
	NativeBytes    prometheus.GaugeFunc
}

// New creates the collectors on a private registry. liveBytes, when set,
// reports the allocator's live native memory on every scrape.
func New(liveBytes func() int64) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SectionsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sections_built_total",
			Help:      "Sections meshed and baked successfully.",
		}),
		SectionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sections_failed_total",
			Help:      "Section builds aborted by a fatal condition.",
		}),
		PassesBaked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_baked_total",
			Help:      "Render passes that produced a baked buffer.",
		}, []string{"pass"}),
		PassesEmpty: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_empty_total",
			Help:      "Render passes skipped because no geometry was emitted.",
		}, []string{"pass"}),
		BakedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "baked_bytes_total",
			Help:      "Bytes of vertex data handed to the upload stage.",
		}, []string{"pass"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "section_build_seconds",
			Help:      "Time to mesh and bake one section.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		ScratchBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scratch_capacity_bytes",
			Help:      "Capacity held by worker build buffers.",
		}),
	}
	if liveBytes == nil {
		liveBytes = func() int64 { return 0 }
	}
	m.NativeBytes = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "native_live_bytes",
		Help:      "Native memory currently allocated for build and baked buffers.",
	}, func() float64 { return float64(liveBytes()) })

	m.registry.MustRegister(
		m.SectionsBuilt, m.SectionsFailed,
		m.PassesBaked, m.PassesEmpty, m.BakedBytes,
		m.BuildDuration, m.ScratchBytes, m.NativeBytes,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on addr. It returns
// immediately; call the returned function to shut the server down.
func (m *Metrics) Serve(addr string) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	log := logger.Named("metrics")
	go func() {
		log.Info("serving /metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()
	return func() { _ = srv.Close() }
}
