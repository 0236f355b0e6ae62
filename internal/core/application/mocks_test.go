package application_test

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/houseofbtc/houseledger/internal/core/domain"
	"github.com/houseofbtc/houseledger/internal/core/ports"
	"github.com/houseofbtc/houseledger/pkg/explorer"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/mock"
)

// **** Wallet engine ****

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Mnemonic() []string {
	args := m.Called()

	var res []string
	if a := args.Get(0); a != nil {
		res = a.([]string)
	}
	return res
}

func (m *mockEngine) Network() *chaincfg.Params {
	return &chaincfg.RegressionNetParams
}

func (m *mockEngine) Sync(ctx context.Context, chain explorer.Service) error {
	args := m.Called(ctx, chain)
	return args.Error(0)
}

func (m *mockEngine) NextAddress() (btcutil.Address, error) {
	args := m.Called()

	var res btcutil.Address
	if a := args.Get(0); a != nil {
		res = a.(btcutil.Address)
	}
	return res, args.Error(1)
}

func (m *mockEngine) BuildAndSign(
	destScript []byte, amount, feeRate uint64,
) (*wire.MsgTx, ports.TxSummary, error) {
	args := m.Called(destScript, amount, feeRate)

	var tx *wire.MsgTx
	if a := args.Get(0); a != nil {
		tx = a.(*wire.MsgTx)
	}
	var summary ports.TxSummary
	if a := args.Get(1); a != nil {
		summary = a.(ports.TxSummary)
	}
	return tx, summary, args.Error(2)
}

func (m *mockEngine) TrackTransaction(summary ports.TxSummary) {
	m.Called(summary)
}

func (m *mockEngine) Balance() uint64 {
	args := m.Called()
	return args.Get(0).(uint64)
}

func (m *mockEngine) Unspents() []explorer.Utxo {
	args := m.Called()

	var res []explorer.Utxo
	if a := args.Get(0); a != nil {
		res = a.([]explorer.Utxo)
	}
	return res
}

func (m *mockEngine) GetTransaction(txid string) fn.Option[ports.TxSummary] {
	args := m.Called(txid)

	res := fn.None[ports.TxSummary]()
	if a := args.Get(0); a != nil {
		res = a.(fn.Option[ports.TxSummary])
	}
	return res
}

// **** Chain ****

type mockChain struct {
	mock.Mock
	explorer.Service
}

func (m *mockChain) BroadcastTransaction(
	ctx context.Context, txhex string,
) (string, error) {
	args := m.Called(ctx, txhex)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

type mockConnector struct {
	mock.Mock
}

func (m *mockConnector) Connect(
	ctx context.Context, endpoint string,
) (explorer.Service, error) {
	args := m.Called(ctx, endpoint)

	var res explorer.Service
	if a := args.Get(0); a != nil {
		res = a.(explorer.Service)
	}
	return res, args.Error(1)
}

// **** User repository ****

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) AddUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetUserByUsername(
	ctx context.Context, username string,
) (*domain.User, error) {
	args := m.Called(ctx, username)

	var res *domain.User
	if a := args.Get(0); a != nil {
		res = a.(*domain.User)
	}
	return res, args.Error(1)
}

func (m *mockUserRepository) GetUserByAccountID(
	ctx context.Context, accountID int,
) (*domain.User, error) {
	args := m.Called(ctx, accountID)

	var res *domain.User
	if a := args.Get(0); a != nil {
		res = a.(*domain.User)
	}
	return res, args.Error(1)
}

func (m *mockUserRepository) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)

	var res []domain.User
	if a := args.Get(0); a != nil {
		res = a.([]domain.User)
	}
	return res, args.Error(1)
}

func (m *mockUserRepository) NextAccountID(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockUserRepository) Close() {}
