// Package metrics records per-run counters in a private Prometheus registry
// and snapshots them to a node-exporter textfile.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"lumina/upi-synth/internal/domain"
	"lumina/upi-synth/internal/injector"
	"lumina/upi-synth/internal/report"
)

const namespace = "upi_synth"

// Recorder holds the run's metrics.
type Recorder struct {
	registry     *prometheus.Registry
	transactions *prometheus.CounterVec
	relabeled    *prometheus.CounterVec
	fraudRate    prometheus.Gauge
}

// NewRecorder creates and registers the run's metrics on a fresh registry,
// so repeated runs in one process never collide.
func NewRecorder(runID string) *Recorder {
	constLabels := prometheus.Labels{"run_id": runID}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "transactions_total",
			Help:        "Generated transactions by final fraud_type label.",
			ConstLabels: constLabels,
		}, []string{"fraud_type"}),
		relabeled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "relabeled_total",
			Help:        "Rows relabeled by the sequential pattern rules.",
			ConstLabels: constLabels,
		}, []string{"rule"}),
		fraudRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "fraud_rate",
			Help:        "Realized fraud rate after sequential patterns.",
			ConstLabels: constLabels,
		}),
	}
	r.registry.MustRegister(r.transactions, r.relabeled, r.fraudRate)
	return r
}

// Observe records a finished run.
func (r *Recorder) Observe(s report.Summary) {
	for _, tc := range s.ByType {
		r.transactions.WithLabelValues(tc.FraudType).Add(float64(tc.Count))
	}
	r.observeInjection(s.Injection)
	r.fraudRate.Set(s.FraudRate)
}

func (r *Recorder) observeInjection(res injector.Result) {
	r.relabeled.WithLabelValues(domain.FraudVelocityAttack).Add(float64(res.VelocityRelabeled))
	r.relabeled.WithLabelValues(domain.FraudMicropayScam).Add(float64(res.MicropayRelabeled))
}

// Gatherer exposes the registry for inspection; the run itself only writes
// the textfile.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// WriteTextfile writes the current values in the text exposition format.
// The file is written atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
