package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
	"github.com/houseofbtc/houseledger/pkg/explorer"
)

// RBFSequence is the input sequence number signaling opt-in
// replace-by-fee (BIP-125).
const RBFSequence = wire.MaxTxInSequenceNum - 2

// CreateTransactionOpts is the struct given to CreateTransaction method
type CreateTransactionOpts struct {
	Unspents []explorer.Utxo
	Outputs  []*wire.TxOut
	// FeeRate is expressed in sat/vB.
	FeeRate uint64
	// ChangeScript is called only if the transaction needs a change output.
	ChangeScript func() ([]byte, error)
	EnableRBF    bool
}

func (o CreateTransactionOpts) validate() error {
	if len(o.Unspents) <= 0 {
		return ErrEmptyUnspents
	}
	if len(o.Outputs) <= 0 {
		return ErrEmptyOutputs
	}
	for i, out := range o.Outputs {
		if out.Value <= 0 {
			return ErrZeroOutputAmount
		}
		if err := txrules.CheckOutput(out, txrules.DefaultRelayFeePerKb); err != nil {
			return fmt.Errorf("output %d: %w", i, err)
		}
	}
	if o.FeeRate <= 0 {
		return ErrInvalidFeeRate
	}
	if o.ChangeScript == nil {
		return ErrNullChangeScript
	}
	for _, u := range o.Unspents {
		if len(u.Script()) <= 0 {
			return fmt.Errorf("unspent %s: %w", u.Key(), explorer.ErrNullUtxoScript)
		}
	}
	return nil
}

// CreateTransaction selects the coins needed to fund the given outputs and
// the network fees, adds a change output if required, and returns the
// resulting partial transaction with the witness utxo of every input set
func CreateTransaction(opts CreateTransactionOpts) (*psbt.Packet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	changeSource := &txauthor.ChangeSource{
		NewScript:  opts.ChangeScript,
		ScriptSize: txsizes.P2WPKHPkScriptSize,
	}
	feeRatePerKb := btcutil.Amount(opts.FeeRate * 1000)

	tx, err := txauthor.NewUnsignedTransaction(
		opts.Outputs, feeRatePerKb, makeInputSource(opts.Unspents), changeSource,
	)
	if err != nil {
		var inputErr txauthor.InputSourceError
		if errors.As(err, &inputErr) {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientFunds, err)
		}
		return nil, err
	}
	if tx.ChangeIndex >= 0 {
		tx.RandomizeChangePosition()
	}

	if opts.EnableRBF {
		for _, in := range tx.Tx.TxIn {
			in.Sequence = RBFSequence
		}
	}

	ptx, err := psbt.NewFromUnsignedTx(tx.Tx)
	if err != nil {
		return nil, err
	}
	updater, err := psbt.NewUpdater(ptx)
	if err != nil {
		return nil, err
	}
	for i := range tx.Tx.TxIn {
		prevout := wire.NewTxOut(int64(tx.PrevInputValues[i]), tx.PrevScripts[i])
		if err := updater.AddInWitnessUtxo(prevout, i); err != nil {
			return nil, err
		}
	}

	return ptx, nil
}

// makeInputSource returns an input source that consumes the given unspents
// in order until the target amount is reached.
func makeInputSource(unspents []explorer.Utxo) txauthor.InputSource {
	currentTotal := btcutil.Amount(0)
	currentInputs := make([]*wire.TxIn, 0, len(unspents))
	currentScripts := make([][]byte, 0, len(unspents))
	currentInputValues := make([]btcutil.Amount, 0, len(unspents))
	eligible := unspents

	return func(target btcutil.Amount) (btcutil.Amount, []*wire.TxIn,
		[]btcutil.Amount, [][]byte, error) {

		for currentTotal < target && len(eligible) != 0 {
			next := eligible[0]
			eligible = eligible[1:]

			in, prevout, err := next.Parse()
			if err != nil {
				return 0, nil, nil, nil, err
			}

			currentTotal += btcutil.Amount(prevout.Value)
			currentInputs = append(currentInputs, in)
			currentScripts = append(currentScripts, prevout.PkScript)
			currentInputValues = append(
				currentInputValues, btcutil.Amount(prevout.Value),
			)
		}

		return currentTotal, currentInputs, currentInputValues,
			currentScripts, nil
	}
}
