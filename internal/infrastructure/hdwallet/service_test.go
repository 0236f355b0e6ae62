package hdwallet

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/houseofbtc/houseledger/pkg/explorer"
	"github.com/houseofbtc/houseledger/pkg/wallet"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon " +
	"abandon abandon abandon abandon abandon about"

type fakeChain struct {
	explorer.Service
	utxos    map[string][]explorer.Utxo
	statuses map[string]explorer.TxStatus
	requests int
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		utxos:    make(map[string][]explorer.Utxo),
		statuses: make(map[string]explorer.TxStatus),
	}
}

func (c *fakeChain) GetUnspentsForAddresses(
	_ context.Context, addresses []string,
) ([]explorer.Utxo, error) {
	c.requests++
	utxos := make([]explorer.Utxo, 0)
	for _, addr := range addresses {
		utxos = append(utxos, c.utxos[addr]...)
	}
	return utxos, nil
}

func (c *fakeChain) GetTransactionStatus(
	_ context.Context, txid string,
) (explorer.TransactionStatus, error) {
	return c.statuses[txid], nil
}

func (c *fakeChain) fund(
	t *testing.T, w *wallet.Wallet, path string, value uint64,
) {
	addr, _, err := w.DeriveAddress(wallet.DeriveAddressOpts{
		DerivationPath: path,
	})
	require.NoError(t, err)

	encoded := addr.EncodeAddress()
	hash := chainhash.DoubleHashH([]byte(fmt.Sprintf("%s:%d", path, value)))
	c.utxos[encoded] = append(c.utxos[encoded], explorer.NewWitnessUtxo(
		hash.String(), 0, value, encoded, nil,
		explorer.TxStatus{IsConfirmed: true, Height: 110},
	))
}

func newTestEngine(t *testing.T, gapLimit uint32) (*engine, *wallet.Wallet) {
	w, err := wallet.NewWalletFromMnemonic(wallet.NewWalletFromMnemonicOpts{
		Mnemonic: strings.Split(testMnemonic, " "),
		Network:  &chaincfg.RegressionNetParams,
	})
	require.NoError(t, err)

	e, err := NewEngine(w, gapLimit)
	require.NoError(t, err)
	return e.(*engine), w
}

func TestNewEngine(t *testing.T) {
	_, err := NewEngine(nil, DefaultGapLimit)
	require.Equal(t, ErrNullWallet, err)

	e, _ := newTestEngine(t, DefaultGapLimit)
	require.Len(t, e.Mnemonic(), 12)
	require.Equal(t, &chaincfg.RegressionNetParams, e.Network())

	factory := NewFactory(DefaultGapLimit)
	other, err := factory(e.Mnemonic(), &chaincfg.RegressionNetParams)
	require.NoError(t, err)

	addr, err := e.NextAddress()
	require.NoError(t, err)
	otherAddr, err := other.NextAddress()
	require.NoError(t, err)
	require.Equal(t, addr.EncodeAddress(), otherAddr.EncodeAddress())

	_, err = factory([]string{"not", "valid"}, &chaincfg.RegressionNetParams)
	require.Error(t, err)
}

func TestSync(t *testing.T) {
	e, w := newTestEngine(t, 5)
	chain := newFakeChain()
	chain.fund(t, w, wallet.RelativePath(0, wallet.ExternalBranch, 3), 1000)
	chain.fund(t, w, wallet.RelativePath(0, wallet.ExternalBranch, 7), 2000)
	chain.fund(t, w, wallet.RelativePath(0, wallet.InternalBranch, 0), 3000)
	// out of gap limit
	chain.fund(t, w, wallet.RelativePath(0, wallet.ExternalBranch, 20), 4000)

	err := e.Sync(context.Background(), chain)
	require.NoError(t, err)
	require.Equal(t, uint64(6000), e.Balance())
	require.Len(t, e.Unspents(), 3)
	for _, u := range e.Unspents() {
		require.NotEmpty(t, u.Script())
	}

	next, err := e.NextAddress()
	require.NoError(t, err)
	expected, _, _ := w.DeriveAddress(wallet.DeriveAddressOpts{
		DerivationPath: wallet.RelativePath(0, wallet.ExternalBranch, 8),
	})
	require.Equal(t, expected.EncodeAddress(), next.EncodeAddress())

	// Syncing again with no chain change gives the same view.
	err = e.Sync(context.Background(), chain)
	require.NoError(t, err)
	require.Equal(t, uint64(6000), e.Balance())
}
