// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for event processing metrics.
const (
	OutcomeAwarded   = "awarded"
	OutcomeDuplicate = "duplicate"
	OutcomeNotFound  = "not_found"
)

// Registrations counts successfully created accounts.
var Registrations = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "user_management_registrations_total",
		Help: "Total number of successful account registrations",
	},
)

// Logins counts login attempts by outcome.
var Logins = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "user_management_logins_total",
		Help: "Total number of login attempts",
	},
	[]string{"status"},
)

// EventsProcessed counts gamification events by kind and outcome.
var EventsProcessed = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "user_management_events_processed_total",
		Help: "Total number of gamification events received",
	},
	[]string{"event_type", "outcome"},
)

// PointsAwarded accumulates points credited to accounts, by event kind.
var PointsAwarded = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "user_management_points_awarded_total",
		Help: "Total points awarded through gamification events",
	},
	[]string{"event_type"},
)

// Register registers all collectors with the given registry. Call once at
// startup; panics on duplicate registration (prometheus convention).
func Register(reg prometheus.Registerer) {
	reg.MustRegister(Registrations, Logins, EventsProcessed, PointsAwarded)
}
