// Package metrics exposes the ledger's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MovementsTotal counts persisted ledger movements by type.
	MovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sisgead_ledger_movements_total",
		Help: "Number of ledger movements persisted, by movement type.",
	}, []string{"type"})

	// TransfersTotal counts completed transfers between accounts.
	TransfersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sisgead_ledger_transfers_total",
		Help: "Number of completed account transfers.",
	})

	// SequentialWritesTotal counts ledger writes applied through the
	// non-transactional fallback path. Non-zero values mean the deployment
	// runs with the weaker consistency mode.
	SequentialWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sisgead_ledger_sequential_writes_total",
		Help: "Number of ledger writes applied without a storage transaction.",
	})

	// RejectedPostingsTotal counts postings rejected before any write, by
	// reason (validation, not_found, header_account, insufficient_funds).
	RejectedPostingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sisgead_ledger_rejected_postings_total",
		Help: "Number of postings rejected before any write, by reason.",
	}, []string{"reason"})
)
