package train

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records training progress.
//
// Thread Safety: Safe for concurrent use; per-sample workers observe
// backward timings in parallel.
type Metrics struct {
	steps    prometheus.Counter
	loss     prometheus.Gauge
	backward prometheus.Histogram
	nodes    prometheus.Histogram
}

// NewMetrics creates the training metrics and registers them with reg.
// A nil reg creates unregistered metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		steps: f.NewCounter(prometheus.CounterOpts{
			Name: "micrograd_train_steps_total",
			Help: "Optimizer steps taken",
		}),
		loss: f.NewGauge(prometheus.GaugeOpts{
			Name: "micrograd_train_loss",
			Help: "Summed squared error of the most recent step",
		}),
		backward: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "micrograd_backward_duration_seconds",
			Help:    "Time spent in one backward pass",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		nodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "micrograd_graph_nodes",
			Help:    "Nodes per per-sample graph",
			Buckets: prometheus.ExponentialBuckets(8, 2, 12),
		}),
	}
}

func (m *Metrics) observeBackward(d time.Duration, nodes int) {
	if m == nil {
		return
	}
	m.backward.Observe(d.Seconds())
	m.nodes.Observe(float64(nodes))
}

func (m *Metrics) observeStep(loss float64) {
	if m == nil {
		return
	}
	m.steps.Inc()
	m.loss.Set(loss)
}
