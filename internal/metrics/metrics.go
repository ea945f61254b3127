// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts authentication and ledger activity.
type Collector struct {
	logins        prometheus.Counter
	loginFailures prometheus.Counter
	registrations prometheus.Counter
	records       *prometheus.CounterVec
}

// NewCollector builds a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mams_logins_total",
			Help: "Total successful logins.",
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mams_login_failures_total",
			Help: "Total rejected login attempts.",
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mams_registrations_total",
			Help: "Total self-registered accounts.",
		}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mams_records_created_total",
			Help: "Ledger records created, by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(c.logins, c.loginFailures, c.registrations, c.records)
	return c
}

// RecordLogin counts a successful login.
func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

// RecordLoginFailure counts a rejected login attempt.
func (c *Collector) RecordLoginFailure() {
	c.loginFailures.Inc()
}

// RecordRegistration counts a new self-registered account.
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordCreated counts a created ledger record of the given kind
// (purchase, transfer, assignment, expenditure).
func (c *Collector) RecordCreated(kind string) {
	c.records.WithLabelValues(kind).Inc()
}

// Handler returns the HTTP handler serving the registry's metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
