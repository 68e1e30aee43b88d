package browser

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "browserd",
		Name:      "sessions_started_total",
		Help:      "Browser sessions started since process start.",
	})
	metricSessionStartFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "browserd",
		Name:      "session_start_failures_total",
		Help:      "Browser session launches that failed.",
	})
	metricSessionActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "browserd",
		Name:      "session_active",
		Help:      "Whether a browser session is currently live (0 or 1).",
	})
	metricOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "browserd",
		Name:      "operations_total",
		Help:      "Driver operations by kind and outcome.",
	}, []string{"op", "outcome"})
	metricOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "browserd",
		Name:      "operation_duration_seconds",
		Help:      "Driver operation latency by kind.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
)

func recordSessionStart(ok bool) {
	if !ok {
		metricSessionStartFailures.Inc()
		return
	}
	metricSessionsStarted.Inc()
	metricSessionActive.Set(1)
}

func recordSessionStop() {
	metricSessionActive.Set(0)
}

func recordOperation(op string, ok bool, latency time.Duration) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	metricOperations.WithLabelValues(op, outcome).Inc()
	metricOperationDuration.WithLabelValues(op).Observe(latency.Seconds())
}
