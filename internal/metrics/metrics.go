// Package metrics defines and registers the custom Prometheus metrics for
// rolegate. It is the single source of truth for metric names, labels, and
// help strings.
//
// All collectors register with the default registry through promauto when
// the package is imported. HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rolegate"

// ── Login metrics ─────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "no-such-user", "bad-password" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LoginDuration measures credential verification time, including the hash
// comparison.
var LoginDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "login_duration_seconds",
		Help:      "Duration of credential verification.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

var SessionsEstablishedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_established_total",
		Help:      "Total number of sessions created by a successful login.",
	},
)

var SessionsDestroyedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_destroyed_total",
		Help:      "Total number of sessions destroyed by logout.",
	},
)

// SessionResolutionsTotal counts per-request session resolution outcomes.
// Label:
//   - result: "resolved", "absent", "invalid" or "error"
var SessionResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolutions_total",
		Help:      "Total number of session resolutions, by result.",
	},
	[]string{"result"},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDenialsTotal counts requests turned away by an access guard.
// Label:
//   - guard: guard name (e.g. "authenticated", "role:admin")
var GuardDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_denials_total",
		Help:      "Total number of requests denied by an access guard.",
	},
	[]string{"guard"},
)

// ── Hashing metrics ───────────────────────────────────────────────────────────

// HashDuration measures a single bcrypt operation.
// Label:
//   - op: "hash" or "compare"
var HashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hash operations.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
	},
	[]string{"op"},
)

// HashQueueDepth tracks jobs waiting for a hashing worker.
var HashQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "password_hash_queue_depth",
		Help:      "Current number of password hash jobs waiting for a worker.",
	},
)
