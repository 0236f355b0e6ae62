package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/houseofbtc/houseledger/internal/core/application"
	"github.com/houseofbtc/houseledger/internal/core/domain"
	"github.com/houseofbtc/houseledger/internal/core/ports"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestMasterAccountOpts(engine *mockEngine) application.MasterAccountOpts {
	return application.MasterAccountOpts{
		Network: &chaincfg.RegressionNetParams,
		EngineFactory: func(
			mnemonic []string, _ *chaincfg.Params,
		) (ports.WalletEngine, error) {
			engine.On("Mnemonic").Return(mnemonic)
			return engine, nil
		},
		ChainConnector: &mockConnector{},
		Clock:          clock.NewTestClock(testNow),
	}
}

func TestNewMasterAccount(t *testing.T) {
	t.Run("generates seed words", func(t *testing.T) {
		engine := &mockEngine{}
		master, err := application.NewMasterAccount(
			newTestMasterAccountOpts(engine),
		)
		require.NoError(t, err)
		require.Len(t, master.Mnemonic(), 24)
		require.False(t, master.IsAttached())
		require.Zero(t, master.TransferredToChildren())
		require.Zero(t, master.BitcoinAmount())
		require.Empty(t, master.PendingTransactions())
	})

	t.Run("uses given seed words", func(t *testing.T) {
		engine := &mockEngine{}
		opts := newTestMasterAccountOpts(engine)
		opts.Mnemonic = testMnemonic
		master, err := application.NewMasterAccount(opts)
		require.NoError(t, err)
		require.Equal(t, testMnemonic, master.Mnemonic())
	})

	t.Run("fails on key derivation", func(t *testing.T) {
		opts := newTestMasterAccountOpts(&mockEngine{})
		opts.EngineFactory = func(
			[]string, *chaincfg.Params,
		) (ports.WalletEngine, error) {
			return nil, errors.New("invalid mnemonic")
		}
		_, err := application.NewMasterAccount(opts)
		require.ErrorIs(t, err, domain.ErrAccountDefault)
		require.ErrorIs(t, err, domain.ErrKey)
	})

	t.Run("fails on invalid opts", func(t *testing.T) {
		opts := newTestMasterAccountOpts(&mockEngine{})
		opts.ChainConnector = nil
		_, err := application.NewMasterAccount(opts)
		require.ErrorIs(t, err, domain.ErrAccountDefault)
		require.ErrorIs(t, err, application.ErrNullChainConnector)
	})
}

func TestAttachToChain(t *testing.T) {
	ctx := context.Background()

	t.Run("without endpoint", func(t *testing.T) {
		h := newTestHouse(t)
		opts := newTestMasterAccountOpts(h.engine)
		master, err := application.NewMasterAccount(opts)
		require.NoError(t, err)

		err = master.AttachToChain(ctx, " ")
		require.ErrorIs(t, err, domain.ErrSyncElectrum)
		require.ErrorIs(t, err, application.ErrMissingChainEndpoint)
		require.False(t, master.IsAttached())
	})

	t.Run("connection failure", func(t *testing.T) {
		h := newTestHouse(t)
		h.connector.On("Connect", mock.Anything, testEndpoint).
			Return(nil, errors.New("connection refused"))

		err := h.house.Master().AttachToChain(ctx, "")
		require.ErrorIs(t, err, domain.ErrSyncElectrum)
		require.False(t, h.house.Master().IsAttached())
	})

	t.Run("sync failure", func(t *testing.T) {
		h := newTestHouse(t)
		h.connector.On("Connect", mock.Anything, "http://other:3000").
			Return(h.chain, nil)
		h.engine.On("Sync", mock.Anything, h.chain).
			Return(errors.New("timeout"))

		err := h.house.Master().AttachToChain(ctx, "http://other:3000")
		require.ErrorIs(t, err, domain.ErrSyncElectrum)
		require.False(t, h.house.Master().IsAttached())

		err = h.house.Master().Sync(ctx)
		require.ErrorIs(t, err, domain.ErrSyncElectrum)
		require.ErrorIs(t, err, application.ErrChainNotAttached)
	})

	t.Run("valid", func(t *testing.T) {
		h := newTestHouse(t)
		h.attach(t, newTestUtxo(t, newTestAddress(t, 1), 50000))

		master := h.house.Master()
		require.True(t, master.IsAttached())
		require.Equal(t, uint64(50000), master.BitcoinAmount())
	})
}

func TestIssueNewAddress(t *testing.T) {
	h := newTestHouse(t)
	master := h.house.Master()

	addr := newTestAddress(t, 1)
	h.engine.On("NextAddress").Return(addr, nil).Once()
	h.engine.On("NextAddress").Return(nil, errors.New("derivation failed")).Once()

	issued, err := master.IssueNewAddress()
	require.NoError(t, err)
	require.Equal(t, addr.EncodeAddress(), issued.EncodeAddress())

	_, err = master.IssueNewAddress()
	require.ErrorIs(t, err, domain.ErrAddress)
	require.Len(t, master.AllAddresses(), 1)
}

func TestMasterSpend(t *testing.T) {
	ctx := context.Background()
	const amount = 40000000

	t.Run("valid", func(t *testing.T) {
		h := newTestHouse(t)
		h.attach(t, newTestUtxo(t, newTestAddress(t, 1), 100000000))
		summary := h.expectSpend(amount, 210, fn.None[domain.BlockTime]())

		master := h.house.Master()
		tx, err := master.Spend(ctx, amount, testDestination(), testFeeRate)
		require.NoError(t, err)
		require.Equal(t, summary.TxID, tx.TxID)
		require.Equal(t, uint64(amount), tx.Sent)
		require.Equal(t, fn.Some(uint64(210)), tx.Fee)
		require.False(t, tx.IsConfirmed())
		require.Equal(t, testNow, tx.BroadcastAt)

		require.Len(t, master.PendingTransactions(), 1)
		total, err := master.PendingSpendTotal()
		require.NoError(t, err)
		require.Equal(t, uint64(amount+210), total)

		// sync before build, re-sync after broadcast.
		h.engine.AssertNumberOfCalls(t, "Sync", 3)
		h.chain.AssertExpectations(t)
	})

	t.Run("not attached", func(t *testing.T) {
		h := newTestHouse(t)
		_, err := h.house.Master().Spend(ctx, amount, testDestination(), testFeeRate)
		require.ErrorIs(t, err, domain.ErrSyncElectrum)
	})

	tests := []struct {
		name         string
		destination  string
		buildErr     error
		broadcastErr error
		expectedErr  error
	}{
		{
			name:        "malformed destination",
			destination: "not-an-address",
			expectedErr: domain.ErrAddress,
		},
		{
			name:        "destination of another network",
			destination: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
			expectedErr: domain.ErrAddress,
		},
		{
			name:        "signing failure",
			destination: testDestination(),
			buildErr:    errors.New("not enough funds to cover amount and fees"),
			expectedErr: domain.ErrKey,
		},
		{
			name:         "broadcast rejected",
			destination:  testDestination(),
			broadcastErr: errors.New("min relay fee not met"),
			expectedErr:  domain.ErrBroadcastTransaction,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHouse(t)
			h.attach(t)

			tx := wire.NewMsgTx(2)
			h.engine.On("BuildAndSign", mock.Anything, mock.Anything, mock.Anything).
				Return(tx, ports.TxSummary{TxID: tx.TxHash().String()}, tt.buildErr)
			h.chain.On("BroadcastTransaction", mock.Anything, mock.Anything).
				Return("", tt.broadcastErr)

			master := h.house.Master()
			_, err := master.Spend(ctx, amount, tt.destination, testFeeRate)
			require.ErrorIs(t, err, tt.expectedErr)
			require.Empty(t, master.PendingTransactions())
		})
	}
}

func TestChainTotal(t *testing.T) {
	ctx := context.Background()
	h := newTestHouse(t)
	h.attach(t,
		newTestUtxo(t, newTestAddress(t, 1), 100000000),
		newTestUtxo(t, newTestAddress(t, 2), 50000000),
	)
	master := h.house.Master()

	// Syncing twice with no chain change yields the same total.
	first, err := master.ChainTotal(ctx)
	require.NoError(t, err)
	second, err := master.ChainTotal(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(150000000), first)
	require.Equal(t, first, second)

	require.NoError(t, master.RecordTransferToChild(100000000))
	available, err := master.ChainTotalMinusTransferred(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(50000000), available)

	require.NoError(t, master.RecordTransferToChild(100000000))
	_, err = master.ChainTotalMinusTransferred(ctx)
	require.ErrorIs(t, err, domain.ErrInsufficientAccount)
}

func TestRecordTransfers(t *testing.T) {
	h := newTestHouse(t)
	master := h.house.Master()

	require.NoError(t, master.RecordTransferToChild(1000))
	require.NoError(t, master.RecordTransferFromChild(400))
	require.Equal(t, uint64(600), master.TransferredToChildren())

	err := master.RecordTransferFromChild(601)
	require.ErrorIs(t, err, domain.ErrInsufficientAccount)
	require.Equal(t, uint64(600), master.TransferredToChildren())

	err = master.RecordTransferToChild(^uint64(0))
	require.ErrorIs(t, err, domain.ErrAmountOverflow)
	require.Equal(t, uint64(600), master.TransferredToChildren())
}

func TestRefreshPendingTransactions(t *testing.T) {
	ctx := context.Background()
	h := newTestHouse(t)
	h.attach(t, newTestUtxo(t, newTestAddress(t, 1), 100000000))
	master := h.house.Master()

	summary := h.expectSpend(40000000, 141, fn.None[domain.BlockTime]())
	_, err := master.Spend(ctx, 40000000, testDestination(), testFeeRate)
	require.NoError(t, err)
	require.Len(t, master.PendingTransactions(), 1)

	// still unconfirmed on chain.
	h.engine.On("GetTransaction", summary.TxID).Return(fn.Some(summary)).Once()
	pending, err := master.RefreshPendingTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// a block confirms it.
	confirmed := summary
	confirmed.Confirmation = fn.Some(domain.BlockTime{
		Height: 101, Timestamp: testNow,
	})
	h.engine.On("GetTransaction", summary.TxID).Return(fn.Some(confirmed)).Once()
	pending, err = master.RefreshPendingTransactions(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
	require.False(t, master.IsPending(summary.TxID))
}
