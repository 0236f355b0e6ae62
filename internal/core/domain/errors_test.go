package domain_test

import (
	"errors"
	"testing"

	"github.com/houseofbtc/houseledger/internal/core/domain"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	werr := domain.NewWalletError(domain.ErrSyncElectrum, cause)
	require.ErrorIs(t, werr, domain.ErrSyncElectrum)
	require.ErrorIs(t, werr, cause)
	require.NotErrorIs(t, werr, domain.ErrBroadcastTransaction)
	require.Equal(t, "error syncing electrum server: connection refused", werr.Error())
	require.True(t, domain.IsWalletError(werr))

	aerr := domain.NewAccountError(domain.ErrAccountDefault, werr)
	require.ErrorIs(t, aerr, domain.ErrAccountDefault)
	require.ErrorIs(t, aerr, domain.ErrSyncElectrum)
	require.True(t, domain.IsWalletError(aerr))

	require.Equal(
		t, "account does not exist",
		domain.NewAccountError(domain.ErrAccountDoesNotExist, nil).Error(),
	)
	require.False(t, domain.IsWalletError(domain.ErrInsufficientAccount))
}

func TestSumSpendTotals(t *testing.T) {
	t.Parallel()

	txs := []domain.TransactionRecord{
		{TxID: "a", Sent: 100000000, Fee: someFee(141)},
		{TxID: "b", Sent: 5000, Fee: someFee(200)},
	}
	total, err := domain.SumSpendTotals(txs)
	require.NoError(t, err)
	require.Equal(t, uint64(100005341), total)

	txs = append(txs, domain.TransactionRecord{TxID: "c", Sent: 1})
	_, err = domain.SumSpendTotals(txs)
	require.ErrorIs(t, err, domain.ErrUnknownFee)
}

func someFee(fee uint64) fn.Option[uint64] {
	return fn.Some(fee)
}
