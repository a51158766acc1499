package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is a valid no-op receiver so library code and tests can skip registration.
type Metrics struct {
	EntriesAppended *prometheus.CounterVec
	AccessDecisions *prometheus.CounterVec
	Logins          prometheus.Counter
	LoginFailures   prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EntriesAppended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_audit_entries_total",
			Help: "Audit entries appended, by outcome status.",
		}, []string{"status"}),
		AccessDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_access_decisions_total",
			Help: "Access gate decisions, by outcome.",
		}, []string{"outcome"}),
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custodia_logins_total",
			Help: "Successful logins.",
		}),
		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custodia_login_failures_total",
			Help: "Rejected login attempts.",
		}),
	}
}

// IncEntryAppended counts one appended audit entry.
func (m *Metrics) IncEntryAppended(status string) {
	if m == nil {
		return
	}
	m.EntriesAppended.WithLabelValues(status).Inc()
}

// IncAccessDecision counts one gate outcome (allowed, denied, failed).
func (m *Metrics) IncAccessDecision(outcome string) {
	if m == nil {
		return
	}
	m.AccessDecisions.WithLabelValues(outcome).Inc()
}

// IncLogin counts one successful login.
func (m *Metrics) IncLogin() {
	if m == nil {
		return
	}
	m.Logins.Inc()
}

// IncLoginFailure counts one rejected login.
func (m *Metrics) IncLoginFailure() {
	if m == nil {
		return
	}
	m.LoginFailures.Inc()
}
