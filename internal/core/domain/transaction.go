package domain

import (
	"math/bits"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// BlockTime identifies the block a transaction got confirmed in.
type BlockTime struct {
	Height    uint32
	Timestamp time.Time
}

// TransactionRecord is the bookkeeping view of a transaction broadcast by the
// wallet. Sent is the value paid to outputs not owned by the wallet, Received
// is the value returned to the wallet (change).
type TransactionRecord struct {
	TxID         string
	Sent         uint64
	Received     uint64
	Fee          fn.Option[uint64]
	Confirmation fn.Option[BlockTime]
	BroadcastAt  time.Time
}

// IsConfirmed returns whether the transaction has been included in a block.
func (t TransactionRecord) IsConfirmed() bool {
	return t.Confirmation.IsSome()
}

// SpendTotal returns sent + fee. It fails if the fee is unknown.
func (t TransactionRecord) SpendTotal() (uint64, error) {
	fee, err := t.Fee.UnwrapOrErr(ErrUnknownFee)
	if err != nil {
		return 0, err
	}
	return addAmounts(t.Sent, fee)
}

// SumSpendTotals sums sent + fee over the given transactions.
func SumSpendTotals(txs []TransactionRecord) (uint64, error) {
	var total uint64
	for _, tx := range txs {
		amount, err := tx.SpendTotal()
		if err != nil {
			return 0, err
		}
		if total, err = addAmounts(total, amount); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func addAmounts(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrAmountOverflow
	}
	return sum, nil
}
