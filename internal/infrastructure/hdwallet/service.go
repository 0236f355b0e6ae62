package hdwallet

import (
	"encoding/hex"
	"errors"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/houseofbtc/houseledger/internal/core/ports"
	"github.com/houseofbtc/houseledger/pkg/explorer"
	"github.com/houseofbtc/houseledger/pkg/wallet"
	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	// DefaultGapLimit is the number of consecutive unused addresses scanned
	// past the last used one of every branch.
	DefaultGapLimit = 20

	account = 0
)

var (
	// ErrNullWallet ...
	ErrNullWallet = errors.New("wallet must not be null")
	// ErrInvalidGapLimit ...
	ErrInvalidGapLimit = errors.New("gap limit must be greater than zero")
)

type derivedAddress struct {
	address btcutil.Address
	script  []byte
	path    string
}

// engine is a BIP-84 single account wallet whose UTXO view is rebuilt from a
// chain connection at every sync.
type engine struct {
	wallet   *wallet.Wallet
	gapLimit uint32

	// next unused index of the external and internal branches.
	nextIndex [2]uint32
	// derived addresses by branch, in index order.
	derived [2][]derivedAddress
	// hex script -> derived address.
	scripts map[string]derivedAddress

	utxos []explorer.Utxo
	txs   map[string]ports.TxSummary
}

// NewEngine returns a wallet engine for the given HD wallet.
func NewEngine(w *wallet.Wallet, gapLimit uint32) (ports.WalletEngine, error) {
	if w == nil {
		return nil, ErrNullWallet
	}
	if gapLimit == 0 {
		return nil, ErrInvalidGapLimit
	}
	return &engine{
		wallet:   w,
		gapLimit: gapLimit,
		scripts:  make(map[string]derivedAddress),
		utxos:    make([]explorer.Utxo, 0),
		txs:      make(map[string]ports.TxSummary),
	}, nil
}

// NewFactory returns a ports.WalletEngineFactory that derives engines with
// the given gap limit.
func NewFactory(gapLimit uint32) ports.WalletEngineFactory {
	return func(
		mnemonic []string, network *chaincfg.Params,
	) (ports.WalletEngine, error) {
		w, err := wallet.NewWalletFromMnemonic(wallet.NewWalletFromMnemonicOpts{
			Mnemonic: mnemonic,
			Network:  network,
		})
		if err != nil {
			return nil, err
		}
		return NewEngine(w, gapLimit)
	}
}

func (e *engine) Mnemonic() []string {
	mnemonic, _ := e.wallet.Mnemonic()
	return mnemonic
}

func (e *engine) Network() *chaincfg.Params {
	return e.wallet.Network()
}

func (e *engine) NextAddress() (btcutil.Address, error) {
	addr, err := e.nextAddress(wallet.ExternalBranch)
	if err != nil {
		return nil, err
	}
	return addr.address, nil
}

func (e *engine) Balance() uint64 {
	var balance uint64
	for _, u := range e.utxos {
		balance += u.Value()
	}
	return balance
}

func (e *engine) Unspents() []explorer.Utxo {
	utxos := make([]explorer.Utxo, len(e.utxos))
	copy(utxos, e.utxos)
	return utxos
}

func (e *engine) TrackTransaction(summary ports.TxSummary) {
	e.txs[summary.TxID] = summary
}

func (e *engine) GetTransaction(txid string) fn.Option[ports.TxSummary] {
	tx, ok := e.txs[txid]
	if !ok {
		return fn.None[ports.TxSummary]()
	}
	return fn.Some(tx)
}

func (e *engine) nextAddress(branch uint32) (derivedAddress, error) {
	addr, err := e.deriveAddress(branch, e.nextIndex[branch])
	if err != nil {
		return derivedAddress{}, err
	}
	e.nextIndex[branch]++
	return addr, nil
}

// deriveAddress returns the address at the given position, deriving and
// caching every missing one up to it.
func (e *engine) deriveAddress(branch, index uint32) (derivedAddress, error) {
	for uint32(len(e.derived[branch])) <= index {
		path := wallet.RelativePath(
			account, branch, uint32(len(e.derived[branch])),
		)
		addr, script, err := e.wallet.DeriveAddress(wallet.DeriveAddressOpts{
			DerivationPath: path,
		})
		if err != nil {
			return derivedAddress{}, err
		}
		derived := derivedAddress{addr, script, path}
		e.derived[branch] = append(e.derived[branch], derived)
		e.scripts[hex.EncodeToString(script)] = derived
	}
	return e.derived[branch][index], nil
}

func (e *engine) isOwnScript(script []byte) bool {
	_, ok := e.scripts[hex.EncodeToString(script)]
	return ok
}

// spendableUtxos returns the UTXO set with confirmed coins first, then by
// descending value.
func (e *engine) spendableUtxos() []explorer.Utxo {
	utxos := e.Unspents()
	sort.SliceStable(utxos, func(i, j int) bool {
		if utxos[i].IsConfirmed() != utxos[j].IsConfirmed() {
			return utxos[i].IsConfirmed()
		}
		return utxos[i].Value() > utxos[j].Value()
	})
	return utxos
}
