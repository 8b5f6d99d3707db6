package node

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the node's prometheus collectors.
type Metrics struct {
	executions      *prometheus.CounterVec
	itemsProcessed  *prometheus.CounterVec
	itemsOutput     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the node collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		executions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clappia_node_executions_total",
				Help: "Total node executions by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		itemsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clappia_node_items_total",
				Help: "Total input items processed by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		itemsOutput: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clappia_node_output_items_total",
				Help: "Total output items produced by operation",
			},
			[]string{"operation"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clappia_node_item_duration_seconds",
				Help:    "Duration of per-item Clappia calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "status"},
		),
	}
}

var (
	defaultMetricsOnce sync.Once
	defaultMetrics     *Metrics
)

// DefaultMetrics returns collectors registered with the default registry.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// recordItem records metrics for one processed item
func (m *Metrics) recordItem(operation Operation, duration float64, status string, outputs int) {
	m.itemsProcessed.WithLabelValues(string(operation), status).Inc()
	m.requestDuration.WithLabelValues(string(operation), status).Observe(duration)
	if outputs > 0 {
		m.itemsOutput.WithLabelValues(string(operation)).Add(float64(outputs))
	}
}

func (m *Metrics) recordExecution(operation Operation, status string) {
	m.executions.WithLabelValues(string(operation), status).Inc()
}
