package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkerMetrics records batch outcomes for background workers such as the
// outbox publisher and the analytics consumer.
type WorkerMetrics struct {
	batchDuration *prometheus.HistogramVec
	processed     *prometheus.CounterVec
	failed        *prometheus.CounterVec
	backlog       *prometheus.GaugeVec
}

// NewWorkerMetrics registers the worker metrics on the provided registerer.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	if reg == nil {
		return &WorkerMetrics{}
	}
	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_batch_duration_seconds",
		Help:    "Duration of worker batch executions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"worker"})
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_events_processed",
		Help: "Events handled successfully by a worker.",
	}, []string{"worker"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_events_failed",
		Help: "Events a worker could not handle.",
	}, []string{"worker"})
	backlog := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "worker_backlog",
		Help: "Events waiting to be processed, as of the last poll.",
	}, []string{"worker"})
	reg.MustRegister(batchDuration, processed, failed, backlog)
	return &WorkerMetrics{
		batchDuration: batchDuration,
		processed:     processed,
		failed:        failed,
		backlog:       backlog,
	}
}

// ObserveBatch records the duration of one batch for the named worker.
func (w *WorkerMetrics) ObserveBatch(worker string, duration time.Duration) {
	if w == nil || w.batchDuration == nil {
		return
	}
	w.batchDuration.WithLabelValues(normalizeLabel(worker)).Observe(duration.Seconds())
}

// AddProcessed increments the processed counter for the named worker.
func (w *WorkerMetrics) AddProcessed(worker string, n int) {
	if w == nil || w.processed == nil || n <= 0 {
		return
	}
	w.processed.WithLabelValues(normalizeLabel(worker)).Add(float64(n))
}

// AddFailed increments the failure counter for the named worker.
func (w *WorkerMetrics) AddFailed(worker string, n int) {
	if w == nil || w.failed == nil || n <= 0 {
		return
	}
	w.failed.WithLabelValues(normalizeLabel(worker)).Add(float64(n))
}

// SetBacklog records the pending event count observed by the named worker.
func (w *WorkerMetrics) SetBacklog(worker string, pending int64) {
	if w == nil || w.backlog == nil {
		return
	}
	w.backlog.WithLabelValues(normalizeLabel(worker)).Set(float64(pending))
}

func normalizeLabel(worker string) string {
	if worker == "" {
		return "unknown"
	}
	return worker
}
