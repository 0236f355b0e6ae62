package application_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/houseofbtc/houseledger/internal/core/application"
	"github.com/houseofbtc/houseledger/internal/core/domain"
	"github.com/houseofbtc/houseledger/internal/core/ports"
	"github.com/houseofbtc/houseledger/pkg/explorer"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testEndpoint = "http://localhost:3000"
	testFeeRate  = 2
)

var (
	testMnemonic = strings.Split(
		"abandon abandon abandon abandon abandon abandon "+
			"abandon abandon abandon abandon abandon about", " ",
	)
	testNow = time.Unix(1700000000, 0)
)

type testHouse struct {
	house     *application.HeadOfTheHouse
	engine    *mockEngine
	chain     *mockChain
	connector *mockConnector
}

func newTestHouse(t *testing.T) *testHouse {
	engine := &mockEngine{}
	chain := &mockChain{}
	connector := &mockConnector{}

	house, err := application.NewHeadOfTheHouse(application.HeadOfTheHouseOpts{
		MasterAccountOpts: application.MasterAccountOpts{
			Mnemonic: testMnemonic,
			Network:  &chaincfg.RegressionNetParams,
			EngineFactory: func(
				[]string, *chaincfg.Params,
			) (ports.WalletEngine, error) {
				return engine, nil
			},
			ChainConnector:  connector,
			DefaultEndpoint: testEndpoint,
			Clock:           clock.NewTestClock(testNow),
		},
		FeeRate: testFeeRate,
	})
	require.NoError(t, err)

	return &testHouse{house, engine, chain, connector}
}

// attach connects the house to the mocked chain. The wallet holds the given
// utxos from now on.
func (h *testHouse) attach(t *testing.T, utxos ...explorer.Utxo) {
	var balance uint64
	for _, u := range utxos {
		balance += u.Value()
	}

	h.connector.On("Connect", mock.Anything, testEndpoint).Return(h.chain, nil)
	h.engine.On("Sync", mock.Anything, h.chain).Return(nil)
	h.engine.On("Balance").Return(balance)
	h.engine.On("Unspents").Return(utxos)

	err := h.house.Master().AttachToChain(context.Background(), "")
	require.NoError(t, err)
}

// issueAddress makes the engine derive the given address for the account.
func (h *testHouse) issueAddress(
	t *testing.T, accountID int, addr btcutil.Address,
) {
	h.engine.On("NextAddress").Return(addr, nil).Once()
	issued, err := h.house.IssueAddressFor(accountID)
	require.NoError(t, err)
	require.Equal(t, addr.EncodeAddress(), issued.EncodeAddress())
}

// expectSpend makes the wallet accept a spend of amount paying the given fee.
func (h *testHouse) expectSpend(
	amount, fee uint64, confirmation fn.Option[domain.BlockTime],
) ports.TxSummary {
	tx := wire.NewMsgTx(2)
	tx.AddTxOut(wire.NewTxOut(int64(amount), testDestinationScript()))

	summary := ports.TxSummary{
		TxID: tx.TxHash().String(),
		Sent: amount,
		Fee:  fn.Some(fee),
	}
	broadcasted := summary
	broadcasted.Confirmation = confirmation

	h.engine.On(
		"BuildAndSign", testDestinationScript(), amount, uint64(testFeeRate),
	).Return(tx, summary, nil).Once()
	h.chain.On("BroadcastTransaction", mock.Anything, mock.Anything).
		Return(summary.TxID, nil).Once()
	h.engine.On("TrackTransaction", summary).Return().Once()
	h.engine.On("GetTransaction", summary.TxID).
		Return(fn.Some(broadcasted)).Once()

	return summary
}

func newTestAddress(t *testing.T, seed byte) btcutil.Address {
	program := make([]byte, 20)
	program[0] = seed
	addr, err := btcutil.NewAddressWitnessPubKeyHash(
		program, &chaincfg.RegressionNetParams,
	)
	require.NoError(t, err)
	return addr
}

func newTestUtxo(t *testing.T, addr btcutil.Address, value uint64) explorer.Utxo {
	script, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	hash := chainhash.DoubleHashH(
		[]byte(fmt.Sprintf("%s:%d", addr.EncodeAddress(), value)),
	)
	return explorer.NewWitnessUtxo(
		hash.String(), 0, value, addr.EncodeAddress(), script,
		explorer.TxStatus{IsConfirmed: true, Height: 100},
	)
}

func testDestination() string {
	program := make([]byte, 20)
	program[19] = 0xff
	addr, _ := btcutil.NewAddressWitnessPubKeyHash(
		program, &chaincfg.RegressionNetParams,
	)
	return addr.EncodeAddress()
}

func testDestinationScript() []byte {
	addr, _ := btcutil.DecodeAddress(
		testDestination(), &chaincfg.RegressionNetParams,
	)
	script, _ := txscript.PayToAddrScript(addr)
	return script
}
