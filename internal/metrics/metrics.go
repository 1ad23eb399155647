// Package metrics defines and registers all custom Prometheus metrics for
// the storefront client. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init and exposed on the identity callback listener.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Session metrics ───────────────────────────────────────────────────────────

// ReconcileAttemptsTotal counts reconciliation passes.
// Labels:
//   - trigger: what started the pass ("bootstrap", "login", "federated", "logout", "expiry")
//   - outcome: resulting session status, or "stale" when the pass was superseded
var ReconcileAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_attempts_total",
		Help:      "Total number of session reconciliation passes, by trigger and outcome.",
	},
	[]string{"trigger", "outcome"},
)

// SessionState tracks the current session status as a one-hot gauge.
// Label:
//   - status: "pending", "unauthenticated", "authenticated", "error"
var SessionState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_state",
		Help:      "Current session status (1 for the active status, 0 otherwise).",
	},
	[]string{"status"},
)

// TokenVerifyDuration measures how long a persisted-token verification
// round-trip takes.
var TokenVerifyDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "token_verify_duration_seconds",
		Help:      "Duration of persisted token verification against the backend.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Cart metrics ──────────────────────────────────────────────────────────────

// CartRefreshTotal counts cart summary refreshes.
// Label:
//   - outcome: "ok", "error", "stale", "skipped"
var CartRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_refresh_total",
		Help:      "Total number of cart summary refreshes, by outcome.",
	},
	[]string{"outcome"},
)

// CartItemCount tracks the current cart badge value.
var CartItemCount = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cart_item_count",
		Help:      "Current number of items in the logged-in user's cart.",
	},
)

// SetSessionState flips the one-hot session state gauge to status.
func SetSessionState(status string) {
	for _, s := range []string{"pending", "unauthenticated", "authenticated", "error"} {
		v := 0.0
		if s == status {
			v = 1.0
		}
		SessionState.WithLabelValues(s).Set(v)
	}
}
