package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	PredictionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finchart",
			Subsystem: "prediction",
			Name:      "latency_seconds",
			Help:      "Latency of calls to the prediction service",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	PredictionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finchart",
			Subsystem: "prediction",
			Name:      "errors_total",
			Help:      "Failed prediction calls by cause",
		},
		[]string{"cause"},
	)

	PredictionRateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "finchart",
			Subsystem: "prediction",
			Name:      "rate_limited_total",
			Help:      "Prediction proxy requests rejected by the rate limiter",
		},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(PredictionLatency, PredictionErrors, PredictionRateLimited)
	})
}
