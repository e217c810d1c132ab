// Package metrics exposes Prometheus collectors for splitvote.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Notification delivery outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeDropped   = "dropped"
	OutcomeFailed    = "failed"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	rpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "splitvote",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total number of RPC calls handled.",
		},
		[]string{"procedure", "code"},
	)

	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "splitvote",
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "Duration of RPC calls.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"procedure"},
	)

	groupsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "splitvote",
			Subsystem: "ledger",
			Name:      "groups_created_total",
			Help:      "Total number of groups created.",
		},
	)

	joinCodeCollisions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "splitvote",
			Subsystem: "ledger",
			Name:      "join_code_collisions_total",
			Help:      "Join code inserts rejected by the uniqueness constraint.",
		},
	)

	membershipChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "splitvote",
			Subsystem: "ledger",
			Name:      "membership_changes_total",
			Help:      "Join requests, approvals and departures that changed state.",
		},
		[]string{"change"},
	)

	expensesSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "splitvote",
			Subsystem: "ledger",
			Name:      "expenses_submitted_total",
			Help:      "Total number of expenses submitted.",
		},
	)

	approvalCasts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "splitvote",
			Subsystem: "ledger",
			Name:      "approval_casts_total",
			Help:      "Approval casts by result (recorded or duplicate).",
		},
		[]string{"result"},
	)

	expensesApproved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "splitvote",
			Subsystem: "ledger",
			Name:      "expenses_approved_total",
			Help:      "Expenses that crossed the approval threshold.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "splitvote",
			Subsystem: "notify",
			Name:      "events_total",
			Help:      "Notification deliveries by event and outcome.",
		},
		[]string{"event", "outcome"},
	)

	wsClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "splitvote",
			Subsystem: "websocket",
			Name:      "clients",
			Help:      "Current number of connected WebSocket clients.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		rpcRequests,
		rpcDuration,
		groupsCreated,
		joinCodeCollisions,
		membershipChanges,
		expensesSubmitted,
		approvalCasts,
		expensesApproved,
		notifications,
		wsClients,
	)
}

// Handler returns the HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordRPC records a completed RPC call.
func RecordRPC(procedure, code string, seconds float64) {
	rpcRequests.WithLabelValues(procedure, code).Inc()
	rpcDuration.WithLabelValues(procedure).Observe(seconds)
}

// RecordGroupCreated counts a new group.
func RecordGroupCreated() { groupsCreated.Inc() }

// RecordJoinCodeCollision counts a join code rejected as already in use.
func RecordJoinCodeCollision() { joinCodeCollisions.Inc() }

// RecordMembershipChange counts a membership state change ("requested",
// "approved", "left").
func RecordMembershipChange(change string) {
	membershipChanges.WithLabelValues(change).Inc()
}

// RecordExpenseSubmitted counts a new expense.
func RecordExpenseSubmitted() { expensesSubmitted.Inc() }

// RecordApprovalCast counts an approval cast. Duplicate casts are counted
// separately from recorded ones.
func RecordApprovalCast(duplicate bool) {
	result := "recorded"
	if duplicate {
		result = "duplicate"
	}
	approvalCasts.WithLabelValues(result).Inc()
}

// RecordExpenseApproved counts an expense crossing its approval threshold.
func RecordExpenseApproved() { expensesApproved.Inc() }

// RecordNotification counts a notification delivery attempt.
func RecordNotification(event, outcome string) {
	notifications.WithLabelValues(event, outcome).Inc()
}

// WebSocketConnected increments the connected client gauge.
func WebSocketConnected() { wsClients.Inc() }

// WebSocketDisconnected decrements the connected client gauge.
func WebSocketDisconnected() { wsClients.Dec() }
