// Package metrics defines and registers all custom Prometheus metrics for
// the blood donation API. It is the single source of truth for metric
// names, labels, and help strings.
//
// All metrics register with the default Prometheus registry via promauto at
// package load time; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bloodcare"

// ── Donation request metrics ──────────────────────────────────────────────────

// RequestsCreatedTotal counts newly created donation requests.
// Label:
//   - blood_group: the requested blood group (e.g. "O+")
var RequestsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_created_total",
		Help:      "Total number of donation requests created, by blood group.",
	},
	[]string{"blood_group"},
)

// PledgesTotal counts pledge attempts.
// Label:
//   - result: "success", "conflict" (lost the race or non-pending), or "denied"
var PledgesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pledges_total",
		Help:      "Total number of pledge attempts, by result.",
	},
	[]string{"result"},
)

// StatusTransitionsTotal counts completed lifecycle transitions.
// Label:
//   - to: the resulting status ("inprogress", "done", "canceled")
var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Total number of donation request status transitions, by target status.",
	},
	[]string{"to"},
)

// ── Funding metrics ───────────────────────────────────────────────────────────

// FundingEventsTotal counts processed payment webhook events.
// Label:
//   - result: "ok" or "error"
var FundingEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "funding_events_total",
		Help:      "Total number of funding webhook events processed, by result.",
	},
	[]string{"result"},
)

// FundingQueueDepth tracks the number of funding events waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var FundingQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "funding_queue_depth",
		Help:      "Current number of funding events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
