// Package metrics defines and registers all custom Prometheus metrics for
// the registration CRM API. It is the single source of truth for metric
// names, labels, and help strings. Metrics self-register with the default
// registry via promauto at package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crm"

// ── Transition metrics ────────────────────────────────────────────────────────

// TransitionsTotal counts successfully applied status transitions.
// Labels:
//   - from: the status the job left
//   - to: the status the job entered
var TransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Total number of job status transitions successfully applied.",
	},
	[]string{"from", "to"},
)

// TransitionErrorsTotal counts rejected transition attempts.
// Label:
//   - reason: "role", "ownership", "payload", "invalid_transition", "write"
var TransitionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transition_errors_total",
		Help:      "Total number of transition attempts rejected or failed.",
	},
	[]string{"reason"},
)

// ── Job metrics ───────────────────────────────────────────────────────────────

// JobsCreatedTotal counts newly created jobs.
// Label:
//   - person_type: "legal" or "individual"
var JobsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_created_total",
		Help:      "Total number of jobs created, by person type.",
	},
	[]string{"person_type"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsCreatedTotal counts notification records written.
// Label:
//   - type: notification type (e.g. "review_requested")
var NotificationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_created_total",
		Help:      "Total number of notifications written, by type.",
	},
	[]string{"type"},
)

// NotificationQueueDepth tracks the number of notification writes waiting in
// each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
