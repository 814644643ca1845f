// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace. It is the single source of truth for metric names, labels, and
// help strings; registration happens automatically via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Relay metrics ─────────────────────────────────────────────────────────────

// ExchangesTotal counts token exchange requests by outcome.
// Labels:
//   - outcome: "ok", "missing_code", "misconfigured", "exchange_failed",
//     "identity_failed"
var ExchangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "oauth_exchanges_total",
		Help:      "Total number of token exchange requests, by outcome.",
	},
	[]string{"outcome"},
)

// ExchangeDuration measures the end-to-end duration of one exchange request,
// including both provider round-trips.
var ExchangeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "oauth_exchange_duration_seconds",
		Help:      "Duration of token exchange requests from receipt to response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// ── Engine metrics ────────────────────────────────────────────────────────────

// AuctionsCreatedTotal counts successfully created auctions.
var AuctionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auctions_created_total",
		Help:      "Total number of auctions created.",
	},
)

// AuctionsDeletedTotal counts admin auction deletions (bid cascade included).
var AuctionsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auctions_deleted_total",
		Help:      "Total number of auctions deleted by moderation.",
	},
)

// BidsPlacedTotal counts accepted bids.
var BidsPlacedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bids_placed_total",
		Help:      "Total number of bids accepted.",
	},
)

// StoreConflictsTotal counts optimistic-concurrency conflicts on the persisted
// domain blob, whether or not the retry succeeded.
var StoreConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_conflicts_total",
		Help:      "Total number of compare-and-set conflicts on the domain blob.",
	},
)
