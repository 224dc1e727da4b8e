package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processedTotal  *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processingGauge prometheus.Gauge
	queueLagSeconds *prometheus.HistogramVec
	issuesTotal     *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "liq",
			Subsystem: "worker",
			Name:      "documents_processed_total",
			Help:      "Total settlement documents processed by terminal status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "liq",
			Subsystem: "worker",
			Name:      "process_duration_seconds",
			Help:      "Per-document pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	processingGauge := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "liq",
			Subsystem: "worker",
			Name:      "documents_in_flight",
			Help:      "Documents currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLagSeconds := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "liq",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Time between upload and the start of processing.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service"},
	)
	issuesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "liq",
			Subsystem: "worker",
			Name:      "issues_total",
			Help:      "Total extraction issues recorded by reason.",
		},
		[]string{"service", "reason"},
	)
	registry.MustRegister(
		processedTotal,
		processDuration,
		processingGauge,
		queueLagSeconds,
		issuesTotal,
	)

	return &WorkerMetrics{
		registry:        registry,
		processedTotal:  processedTotal,
		processDuration: processDuration,
		processingGauge: processingGauge,
		queueLagSeconds: queueLagSeconds,
		issuesTotal:     issuesTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) ProcessingStarted() {
	m.processingGauge.Inc()
}

func (m *WorkerMetrics) ProcessingFinished(service, status string, duration time.Duration) {
	m.processingGauge.Dec()
	m.processedTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLagSeconds.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) RecordIssue(service, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	m.issuesTotal.WithLabelValues(service, reason).Inc()
}
