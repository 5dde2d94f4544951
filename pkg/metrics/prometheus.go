package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	renders     *prometheus.CounterVec
	renderTime  *prometheus.HistogramVec
	primitives  *prometheus.HistogramVec
	errorsTotal *prometheus.CounterVec
	lastClose   *prometheus.GaugeVec
	cache       *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg uses the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		renders: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finchart_renders_total",
				Help: "Scenes computed per projection",
			},
			[]string{"projection"},
		),
		renderTime: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finchart_render_duration_seconds",
				Help:    "Time spent computing a scene",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
			},
			[]string{"projection"},
		),
		primitives: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finchart_scene_primitives",
				Help:    "Primitive count per computed scene",
				Buckets: prometheus.ExponentialBuckets(8, 2, 10),
			},
			[]string{"projection"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finchart_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastClose: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finchart_last_close",
				Help: "Last close rendered for a symbol",
			},
			[]string{"symbol"},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finchart_scene_cache_total",
				Help: "Scene cache lookups by result",
			},
			[]string{"result"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finchart_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRender records one computed scene.
func (r *Recorder) RecordRender(projection string, seconds float64, primitives int) {
	r.renders.WithLabelValues(projection).Inc()
	r.renderTime.WithLabelValues(projection).Observe(seconds)
	r.primitives.WithLabelValues(projection).Observe(float64(primitives))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastClose records the last close for a symbol.
func (r *Recorder) RecordLastClose(symbol string, price float64) {
	r.lastClose.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cache.WithLabelValues(result).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
