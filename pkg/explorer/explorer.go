package explorer

import "context"

// Service is representation of an explorer that allows to fetch data from the
// Bitcoin blockchain and to broadcast transactions.
type Service interface {
	// GetBlockHeight returns the height of the chain tip.
	GetBlockHeight(ctx context.Context) (uint32, error)
	// GetUnspents fetches the confirmed and unconfirmed utxos of the given
	// address.
	GetUnspents(ctx context.Context, addr string) ([]Utxo, error)
	// GetUnspentsForAddresses fetches the utxos of the given list of
	// addresses.
	GetUnspentsForAddresses(ctx context.Context, addresses []string) ([]Utxo, error)
	// GetTransactionHex fetches the transaction in hex format given its hash.
	GetTransactionHex(ctx context.Context, txid string) (string, error)
	// GetTransactionStatus returns the status of the tx identified by its hash.
	GetTransactionStatus(ctx context.Context, txid string) (TransactionStatus, error)
	// IsTransactionConfirmed returns whether the tx identified by its hash has
	// been included in the blockchain.
	IsTransactionConfirmed(ctx context.Context, txid string) (bool, error)
	// BroadcastTransaction attempts to add the given tx in hex format to the
	// mempool and returns its tx hash.
	BroadcastTransaction(ctx context.Context, txhex string) (string, error)
	// GetFeeEstimates returns the fee rates in sat/vB indexed by confirmation
	// target expressed in number of blocks.
	GetFeeEstimates(ctx context.Context) (FeeEstimates, error)
}

// TransactionStatus holds the confirmation details of a transaction.
type TransactionStatus interface {
	Confirmed() bool
	BlockHeight() uint32
	BlockHash() string
	BlockTime() int64
}

// FeeEstimates maps confirmation targets (blocks) to fee rates (sat/vB).
type FeeEstimates map[int]float64

// FeeRateForTarget returns the fee rate of the lowest target greater than or
// equal to the given one. It returns false if no such target exists.
func (f FeeEstimates) FeeRateForTarget(target int) (float64, bool) {
	best := -1
	for t := range f {
		if t >= target && (best < 0 || t < best) {
			best = t
		}
	}
	if best < 0 {
		return 0, false
	}
	return f[best], true
}
