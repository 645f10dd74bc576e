package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Validation failure kinds.
const (
	FailureRequired    = "required"
	FailureConditional = "conditional"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted     prometheus.Counter
	FieldEdits          prometheus.Counter
	ValidationFailures  *prometheus.CounterVec
	ReportsPersisted    prometheus.Counter
	PersistenceFailures prometheus.Counter
}

// New creates and registers all Prometheus metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "echo_sessions_started_total",
			Help: "Total number of report sessions started",
		}),
		FieldEdits: factory.NewCounter(prometheus.CounterOpts{
			Name: "echo_field_edits_total",
			Help: "Total number of accepted field writes",
		}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "echo_validation_failures_total",
			Help: "Total number of rejected submissions by failing step",
		}, []string{"kind"}),
		ReportsPersisted: factory.NewCounter(prometheus.CounterOpts{
			Name: "echo_reports_persisted_total",
			Help: "Total number of reports written to the store",
		}),
		PersistenceFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "echo_persistence_failures_total",
			Help: "Total number of report writes the store rejected",
		}),
	}
}

// IncrementSessionsStarted increments the sessions started counter by 1
func (m *Metrics) IncrementSessionsStarted() {
	m.SessionsStarted.Inc()
}

// IncrementFieldEdits increments the field edit counter by 1
func (m *Metrics) IncrementFieldEdits() {
	m.FieldEdits.Inc()
}

// IncrementValidationFailures counts one rejected submission of the given kind.
func (m *Metrics) IncrementValidationFailures(kind string) {
	m.ValidationFailures.WithLabelValues(kind).Inc()
}

// IncrementReportsPersisted increments the persisted reports counter by 1
func (m *Metrics) IncrementReportsPersisted() {
	m.ReportsPersisted.Inc()
}

// IncrementPersistenceFailures increments the persistence failure counter by 1
func (m *Metrics) IncrementPersistenceFailures() {
	m.PersistenceFailures.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
