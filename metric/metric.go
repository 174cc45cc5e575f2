// Package metric registers the portal's prometheus counters. They are
// incremented from handlers and scraped via GET /metrics.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sampark_registrations_total",
		Help: "Attendee registrations accepted",
	})

	Approvals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sampark_approvals_total",
		Help: "Registrations approved by an admin",
	})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sampark_logins_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})

	ConnectionRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sampark_connection_requests_total",
		Help: "Connection requests created",
	})

	ConnectionResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sampark_connection_responses_total",
		Help: "Connection responses by decision",
	}, []string{"decision"})
)
