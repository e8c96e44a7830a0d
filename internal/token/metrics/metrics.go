package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the token module.
type Metrics struct {
	// Tokens written by Issue
	TokensIssued prometheus.Counter

	// Issue requests whose host fell back to the raw value
	HostEncodingFallbacks prometheus.Counter

	// Resolve outcomes: "redirect", "render"
	ResolveOutcomes *prometheus.CounterVec

	// Check outcomes: "found", "empty", "invalid"
	CheckOutcomes *prometheus.CounterVec

	// Store latency by operation
	StoreOpDuration *prometheus.HistogramVec
}

// New creates a Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TokensIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "qrpass_tokens_issued_total",
			Help: "Total verification tokens issued",
		}),

		HostEncodingFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "qrpass_host_encoding_fallbacks_total",
			Help: "Total issuances that used the raw host because encoding failed",
		}),

		ResolveOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "qrpass_resolve_outcomes_total",
			Help: "Verification resolutions by outcome",
		}, []string{"outcome"}),

		CheckOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "qrpass_check_outcomes_total",
			Help: "Certificate checks by outcome",
		}, []string{"outcome"}),

		StoreOpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qrpass_store_operation_duration_seconds",
			Help:    "Duration of record store operations",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"op"}), // op: "exists", "write", "expire", "read"
	}
}

// IncrementIssued records one issued token.
func (m *Metrics) IncrementIssued() {
	if m != nil {
		m.TokensIssued.Inc()
	}
}

// IncrementHostFallback records one host encoding fallback.
func (m *Metrics) IncrementHostFallback() {
	if m != nil {
		m.HostEncodingFallbacks.Inc()
	}
}

// IncrementResolve records a resolve outcome.
func (m *Metrics) IncrementResolve(outcome string) {
	if m != nil {
		m.ResolveOutcomes.WithLabelValues(outcome).Inc()
	}
}

// IncrementCheck records a check outcome.
func (m *Metrics) IncrementCheck(outcome string) {
	if m != nil {
		m.CheckOutcomes.WithLabelValues(outcome).Inc()
	}
}

// ObserveStoreOp records the duration of a store operation.
func (m *Metrics) ObserveStoreOp(op string, d time.Duration) {
	if m != nil {
		m.StoreOpDuration.WithLabelValues(op).Observe(d.Seconds())
	}
}
