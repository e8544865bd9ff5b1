// Package observability holds the Prometheus metrics for the replay
// engine. Metrics are package-level promauto vars registered on the
// default registry and served from /metrics in serve mode.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Engine Metrics ─────────────────────────────────────────────────────────

// TransactionsProcessed counts records that mutated the ledger, by kind.
var TransactionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "reckon",
	Subsystem: "engine",
	Name:      "transactions_processed_total",
	Help:      "Total transaction records applied to the ledger, by kind.",
}, []string{"kind"})

// TransactionsDiscarded counts silently-discarded records, by kind and reason.
var TransactionsDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "reckon",
	Subsystem: "engine",
	Name:      "transactions_discarded_total",
	Help:      "Total semantically invalid records discarded, by kind and reason.",
}, []string{"kind", "reason"})

// AccountsCreated counts lazily-created accounts.
var AccountsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "reckon",
	Subsystem: "ledger",
	Name:      "accounts_created_total",
	Help:      "Total client accounts created.",
})

// AccountsLocked counts accounts locked by a chargeback.
var AccountsLocked = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "reckon",
	Subsystem: "ledger",
	Name:      "accounts_locked_total",
	Help:      "Total accounts locked by a chargeback.",
})

// DisputesOpen tracks disputes currently held open.
var DisputesOpen = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "reckon",
	Subsystem: "engine",
	Name:      "disputes_open",
	Help:      "Number of disputes currently open (funds held).",
})
