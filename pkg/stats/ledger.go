package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "houseledger"

// Outcome labels of a ledger operation.
const (
	OutcomeOk       = "ok"
	OutcomeRejected = "rejected"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// LedgerMetrics groups the prometheus collectors describing the activity of
// the ledger.
type LedgerMetrics struct {
	operations  *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	chainTotal  prometheus.Gauge
	transferred prometheus.Gauge
	pending     prometheus.Gauge
	addresses   prometheus.Gauge
	accounts    prometheus.Gauge
}

// NewLedgerMetrics creates the ledger collectors and registers them with the
// given registerer.
func NewLedgerMetrics(reg prometheus.Registerer) (*LedgerMetrics, error) {
	m := &LedgerMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Number of ledger operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of ledger operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		chainTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "master_chain_total_sats",
			Help:      "Spendable on-chain balance of the shared wallet.",
		}),
		transferred: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "master_transferred_to_children_sats",
			Help:      "Credit the master account owes to child accounts.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "master_pending_spend_sats",
			Help:      "Sum of sent amounts and fees of unconfirmed spends.",
		}),
		addresses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "master_addresses",
			Help:      "Number of addresses issued by the shared wallet.",
		}),
		accounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "accounts",
			Help:      "Number of registered child accounts.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.operations, m.latency, m.chainTotal, m.transferred, m.pending,
		m.addresses, m.accounts,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveOperation records the outcome and duration of a ledger operation.
func (m *LedgerMetrics) ObserveOperation(
	operation, outcome string, took time.Duration,
) {
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.latency.WithLabelValues(operation).Observe(took.Seconds())
}

// SetMasterInfo updates the gauges describing the shared wallet.
func (m *LedgerMetrics) SetMasterInfo(
	chainTotal, transferred, pendingSpend uint64, addresses int,
) {
	m.chainTotal.Set(float64(chainTotal))
	m.transferred.Set(float64(transferred))
	m.pending.Set(float64(pendingSpend))
	m.addresses.Set(float64(addresses))
}

// SetAccounts updates the number of registered child accounts.
func (m *LedgerMetrics) SetAccounts(count int) {
	m.accounts.Set(float64(count))
}
