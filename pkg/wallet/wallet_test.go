package wallet

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon " +
	"abandon abandon abandon abandon abandon about"

func TestNewWallet(t *testing.T) {
	tests := []struct {
		opts          NewWalletOpts
		expectedWords int
	}{
		{NewWalletOpts{Network: &chaincfg.RegressionNetParams}, 24},
		{NewWalletOpts{EntropySize: 128, Network: &chaincfg.MainNetParams}, 12},
	}
	for _, tt := range tests {
		w, err := NewWallet(tt.opts)
		require.NoError(t, err)

		mnemonic, err := w.Mnemonic()
		require.NoError(t, err)
		assert.Len(t, mnemonic, tt.expectedWords)
		assert.True(t, IsMnemonicValid(mnemonic))
		assert.Equal(t, tt.opts.Network, w.Network())
	}
}

func TestFailingNewMnemonic(t *testing.T) {
	tests := []int{-1, 127, 257, 130}
	for _, tt := range tests {
		_, err := NewMnemonic(NewMnemonicOpts{EntropySize: tt})
		assert.Equal(t, ErrInvalidEntropySize, err)
	}
}

func TestNewWalletFromMnemonic(t *testing.T) {
	w, err := NewWallet(NewWalletOpts{Network: &chaincfg.RegressionNetParams})
	require.NoError(t, err)

	mnemonic, _ := w.Mnemonic()
	otherWallet, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		Mnemonic: mnemonic,
		Network:  &chaincfg.RegressionNetParams,
	})
	require.NoError(t, err)
	assert.Equal(t, *w, *otherWallet)
}

func TestFailingNewWalletFromMnemonic(t *testing.T) {
	tests := []struct {
		opts NewWalletFromMnemonicOpts
		err  error
	}{
		{
			opts: NewWalletFromMnemonicOpts{
				Mnemonic: nil,
				Network:  &chaincfg.MainNetParams,
			},
			err: ErrNullMnemonic,
		},
		{
			opts: NewWalletFromMnemonicOpts{
				Mnemonic: strings.Split("legal winner thank year wave sausage worth useful legal winner thank yellow yellow", " "),
				Network:  &chaincfg.MainNetParams,
			},
			err: ErrInvalidMnemonic,
		},
		{
			opts: NewWalletFromMnemonicOpts{
				Mnemonic: strings.Split(testMnemonic, " "),
			},
			err: ErrNullNetwork,
		},
	}
	for _, tt := range tests {
		_, err := NewWalletFromMnemonic(tt.opts)
		assert.Equal(t, tt.err, err)
	}
}

func newTestWallet(t *testing.T, net *chaincfg.Params) *Wallet {
	w, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		Mnemonic: strings.Split(testMnemonic, " "),
		Network:  net,
	})
	require.NoError(t, err)
	return w
}
