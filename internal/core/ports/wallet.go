package ports

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/houseofbtc/houseledger/internal/core/domain"
	"github.com/houseofbtc/houseledger/pkg/explorer"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// TxSummary is what the wallet engine knows about one of its transactions.
type TxSummary struct {
	TxID string
	// Sent is the value paid to outputs the wallet does not own.
	Sent uint64
	// Received is the value paid back to the wallet.
	Received     uint64
	Fee          fn.Option[uint64]
	Confirmation fn.Option[domain.BlockTime]
}

// WalletEngine is the signing wallet exclusively owned by the master account.
// Implementations are not safe for concurrent use.
type WalletEngine interface {
	// Mnemonic returns the seed words the wallet is derived from.
	Mnemonic() []string
	// Network returns the chain params of the wallet's addresses.
	Network() *chaincfg.Params
	// Sync refreshes the wallet's UTXO view and the confirmation status of
	// its known transactions against the given chain connection.
	Sync(ctx context.Context, chain explorer.Service) error
	// NextAddress derives the next unused receive address.
	NextAddress() (btcutil.Address, error)
	// BuildAndSign funds, with the engine's coin selection, a replaceable
	// transaction paying amount to destScript at feeRate sat/vB and signs it.
	BuildAndSign(
		destScript []byte, amount, feeRate uint64,
	) (*wire.MsgTx, TxSummary, error)
	// TrackTransaction makes the engine follow the confirmation status of a
	// broadcast transaction.
	TrackTransaction(summary TxSummary)
	// Balance returns the total value of the wallet's confirmed and
	// unconfirmed UTXOs.
	Balance() uint64
	// Unspents returns the wallet's UTXO set as of the last sync.
	Unspents() []explorer.Utxo
	// GetTransaction returns the summary of a known transaction.
	GetTransaction(txid string) fn.Option[TxSummary]
}

// WalletEngineFactory derives a wallet engine from the given seed words.
type WalletEngineFactory func(
	mnemonic []string, network *chaincfg.Params,
) (WalletEngine, error)

// ChainConnector opens connections to a blockchain data source.
type ChainConnector interface {
	Connect(ctx context.Context, endpoint string) (explorer.Service, error)
}
