package predict

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction outcomes recorded in the predictions counter.
const (
	OutcomeViolated  = "violated"
	OutcomeCompliant = "compliant"
	OutcomeError     = "error"
)

// Metrics holds the prediction collectors. A nil *Metrics records nothing.
type Metrics struct {
	predictions *prometheus.CounterVec
	unseen      *prometheus.CounterVec
	overrides   prometheus.Counter
	latency     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "predictions_total",
			Help:      "SLA predictions served, by outcome.",
		}, []string{"outcome"}),
		unseen: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "unseen_categories_total",
			Help:      "Categorical values missing from the training vocabulary, by column.",
		}, []string{"column"}),
		overrides: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "business_overrides_total",
			Help:      "Predictions forced to a violation by the critical-priority rule.",
		}),
		latency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sentinel",
			Name:      "prediction_duration_seconds",
			Help:      "Time spent evaluating one prediction.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
	}
}

func (m *Metrics) observe(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(outcome).Inc()
	m.latency.Observe(seconds)
}

func (m *Metrics) override() {
	if m == nil {
		return
	}
	m.overrides.Inc()
}

func (m *Metrics) unseenCategory(column string) {
	if m == nil {
		return
	}
	m.unseen.WithLabelValues(column).Inc()
}
