package stats_test

import (
	"testing"
	"time"

	"github.com/houseofbtc/houseledger/pkg/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestLedgerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := stats.NewLedgerMetrics(reg)
	require.NoError(t, err)

	m.ObserveOperation("spend", stats.OutcomeOk, 10*time.Millisecond)
	m.ObserveOperation("spend", stats.OutcomeOk, 20*time.Millisecond)
	m.ObserveOperation("spend", stats.OutcomeRejected, time.Millisecond)
	m.SetMasterInfo(100000000, 30000000, 210, 4)
	m.SetAccounts(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			switch {
			case metric.GetGauge() != nil:
				values[f.GetName()] = metric.GetGauge().GetValue()
			case metric.GetCounter() != nil:
				key := f.GetName()
				for _, l := range metric.GetLabel() {
					key += "/" + l.GetValue()
				}
				values[key] = metric.GetCounter().GetValue()
			}
		}
	}

	require.Equal(t, float64(2), values["houseledger_operations_total/spend/ok"])
	require.Equal(t, float64(1), values["houseledger_operations_total/spend/rejected"])
	require.Equal(t, float64(100000000), values["houseledger_master_chain_total_sats"])
	require.Equal(t, float64(30000000), values["houseledger_master_transferred_to_children_sats"])
	require.Equal(t, float64(210), values["houseledger_master_pending_spend_sats"])
	require.Equal(t, float64(4), values["houseledger_master_addresses"])
	require.Equal(t, float64(3), values["houseledger_accounts"])

	_, err = stats.NewLedgerMetrics(reg)
	require.Error(t, err)
}
