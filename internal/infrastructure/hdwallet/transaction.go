package hdwallet

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/wire"
	"github.com/houseofbtc/houseledger/internal/core/ports"
	"github.com/houseofbtc/houseledger/pkg/wallet"
	"github.com/lightningnetwork/lnd/fn/v2"
)

func (e *engine) BuildAndSign(
	destScript []byte, amount, feeRate uint64,
) (*wire.MsgTx, ports.TxSummary, error) {
	ptx, err := wallet.CreateTransaction(wallet.CreateTransactionOpts{
		Unspents: e.spendableUtxos(),
		Outputs:  []*wire.TxOut{wire.NewTxOut(int64(amount), destScript)},
		FeeRate:  feeRate,
		ChangeScript: func() ([]byte, error) {
			addr, err := e.nextAddress(wallet.InternalBranch)
			if err != nil {
				return nil, err
			}
			return addr.script, nil
		},
		EnableRBF: true,
	})
	if err != nil {
		return nil, ports.TxSummary{}, err
	}

	var totalIn uint64
	derivationPaths := make(map[string]string)
	for _, in := range ptx.Inputs {
		script := hex.EncodeToString(in.WitnessUtxo.PkScript)
		derivationPaths[script] = e.scripts[script].path
		totalIn += uint64(in.WitnessUtxo.Value)
	}

	tx, err := e.wallet.SignTransaction(wallet.SignTransactionOpts{
		Packet:            ptx,
		DerivationPathMap: derivationPaths,
	})
	if err != nil {
		return nil, ports.TxSummary{}, err
	}

	// The payment counts as sent even when the destination is one of the
	// wallet's own addresses. Only the change is received.
	summary := ports.TxSummary{TxID: tx.TxHash().String()}
	var totalOut uint64
	paymentFound := false
	for _, out := range tx.TxOut {
		totalOut += uint64(out.Value)
		if !paymentFound && uint64(out.Value) == amount &&
			bytes.Equal(out.PkScript, destScript) {
			paymentFound = true
			summary.Sent += uint64(out.Value)
			continue
		}
		if e.isOwnScript(out.PkScript) {
			summary.Received += uint64(out.Value)
			continue
		}
		summary.Sent += uint64(out.Value)
	}
	summary.Fee = fn.Some(totalIn - totalOut)

	return tx, summary, nil
}
