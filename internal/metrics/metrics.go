// Package metrics defines all custom Prometheus metrics for taskdeck. It is
// the single source of truth for metric names, labels, and help strings.
//
// Metrics register with the default registry at package init; the watch
// command exposes them on a local /metrics listener.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskdeck"

// ── Live channel metrics ──────────────────────────────────────────────────────

// EventsReceivedTotal counts push envelopes read off the wire.
// Label:
//   - type: the envelope type tag (e.g. "task-changed"), or "unknown"
var EventsReceivedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_received_total",
		Help:      "Total number of push envelopes received, by envelope type.",
	},
	[]string{"type"},
)

// EventsDroppedTotal counts envelopes that were discarded before reaching a
// reconciler.
// Label:
//   - reason: "malformed", "unknown_type", or "filtered"
var EventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of push envelopes dropped without mutating state.",
	},
	[]string{"reason"},
)

// ── Reconciler metrics ────────────────────────────────────────────────────────

// ReconcileAppliedTotal counts merge rules applied to a view's collection.
// Labels:
//   - view:   "dashboard", "notifications", or "audit"
//   - action: "insert", "replace", "remove", or "noop"
var ReconcileAppliedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_applied_total",
		Help:      "Total number of reconciliation rules applied, by view and action.",
	},
	[]string{"view", "action"},
)

// RefetchTotal counts authoritative full refetches.
// Labels:
//   - view:   the view that refetched
//   - trigger: "start", "coarse_event", "filter_change", or "poll_drift"
var RefetchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refetch_total",
		Help:      "Total number of full authoritative refetches, by view and trigger.",
	},
	[]string{"view", "trigger"},
)

// CollectionSize tracks the current length of each view's collection.
var CollectionSize = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "collection_size",
		Help:      "Current number of entities retained in each view's collection.",
	},
	[]string{"view"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state machine transitions.
// Label:
//   - to: the state entered ("unauthenticated", "authenticating", "authenticated")
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by target state.",
	},
	[]string{"to"},
)

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayRequestsTotal counts REST calls by outcome.
// Labels:
//   - endpoint: logical endpoint name (e.g. "tasks.list")
//   - outcome:  "ok", "api_error", "auth_expired", or "transport"
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of REST gateway calls, by endpoint and outcome.",
	},
	[]string{"endpoint", "outcome"},
)

// GatewayRequestDuration measures REST call latency.
var GatewayRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of REST gateway calls from request to decoded response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)
