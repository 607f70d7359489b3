// Package metrics contains the Prometheus collectors for the content registry
package metrics // import "github.com/joincivil/civil-content-registry/pkg/metrics"

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the registry collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// Registration attempts by outcome
	Registrations *prometheus.CounterVec

	// Verify commands by outcome: hit, miss, error
	Verifications *prometheus.CounterVec

	// Orchestrated verifications by final status
	OrchestratedStatus *prometheus.CounterVec

	// Latency of external calls by source
	SourceLatency *prometheus.HistogramVec

	// External call outcomes by source and outcome: ok, unavailable
	SourceOutcome *prometheus.CounterVec

	// Metadata cache lookups by result: hit, miss
	CacheLookups *prometheus.CounterVec

	// Headlines handled by the ingester by outcome
	IngestedHeadlines *prometheus.CounterVec

	// Ledger events applied by the indexer by type
	IndexedEvents *prometheus.CounterVec
}

// New creates the registry collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civil_registry_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),

		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civil_registry_verifications_total",
			Help: "Exact verification commands by outcome",
		}, []string{"outcome"}),

		OrchestratedStatus: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civil_registry_orchestrated_verifications_total",
			Help: "Orchestrated verifications by final status",
		}, []string{"status"}),

		SourceLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civil_registry_source_duration_seconds",
			Help:    "Duration of calls to external sources",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"source"}),

		SourceOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civil_registry_source_outcomes_total",
			Help: "Outcomes of calls to external sources",
		}, []string{"source", "outcome"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civil_registry_metadata_cache_lookups_total",
			Help: "Metadata cache lookups by result",
		}, []string{"result"}),

		IngestedHeadlines: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civil_registry_ingested_headlines_total",
			Help: "Headlines handled by the ingester by outcome",
		}, []string{"outcome"}),

		IndexedEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civil_registry_indexed_events_total",
			Help: "Ledger events applied by the indexer by type",
		}, []string{"event_type"}),
	}
}

// IncRegistration records a registration outcome
func (m *Metrics) IncRegistration(outcome string) {
	if m != nil {
		m.Registrations.WithLabelValues(outcome).Inc()
	}
}

// IncVerification records a verify command outcome
func (m *Metrics) IncVerification(outcome string) {
	if m != nil {
		m.Verifications.WithLabelValues(outcome).Inc()
	}
}

// IncOrchestratedStatus records the final status of an orchestrated verification
func (m *Metrics) IncOrchestratedStatus(status string) {
	if m != nil {
		m.OrchestratedStatus.WithLabelValues(status).Inc()
	}
}

// ObserveSource records the latency and outcome of an external call
func (m *Metrics) ObserveSource(source string, d time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.SourceLatency.WithLabelValues(source).Observe(d.Seconds())
	outcome := "ok"
	if !ok {
		outcome = "unavailable"
	}
	m.SourceOutcome.WithLabelValues(source, outcome).Inc()
}

// IncCacheLookup records a metadata cache hit or miss
func (m *Metrics) IncCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

// IncIngestedHeadline records an ingester outcome
func (m *Metrics) IncIngestedHeadline(outcome string) {
	if m != nil {
		m.IngestedHeadlines.WithLabelValues(outcome).Inc()
	}
}

// IncIndexedEvent records an event applied by the indexer
func (m *Metrics) IncIndexedEvent(eventType string) {
	if m != nil {
		m.IndexedEvents.WithLabelValues(eventType).Inc()
	}
}
