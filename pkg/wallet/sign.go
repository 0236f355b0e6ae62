package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// SignTransactionOpts is the struct given to SignTransaction method
type SignTransactionOpts struct {
	Packet *psbt.Packet
	// DerivationPathMap maps hex encoded output scripts to the relative
	// derivation path of the key controlling them.
	DerivationPathMap map[string]string
}

func (o SignTransactionOpts) validate() error {
	if o.Packet == nil {
		return ErrNullPacket
	}
	if len(o.DerivationPathMap) <= 0 {
		return ErrEmptyDerivationPaths
	}

	for script, path := range o.DerivationPathMap {
		derivationPath, err := ParseDerivationPath(path)
		if err != nil {
			return fmt.Errorf(
				"invalid derivation path '%s' for script '%s': %v",
				path, script, err,
			)
		}
		if err := checkDerivationPath(derivationPath); err != nil {
			return fmt.Errorf(
				"invalid derivation path '%s' for script '%s': %v",
				path, script, err,
			)
		}
	}

	for i, in := range o.Packet.Inputs {
		if in.WitnessUtxo == nil {
			return fmt.Errorf("input %d: %w", i, ErrNullInputWitnessUtxo)
		}
		script := hex.EncodeToString(in.WitnessUtxo.PkScript)
		if _, ok := o.DerivationPathMap[script]; !ok {
			return fmt.Errorf(
				"derivation path not found in list for input %d with script '%s'",
				i, script,
			)
		}
	}

	return nil
}

// SignTransaction signs all inputs of a partial transaction using the keys
// derived with the help of the map script:derivation_path, then finalizes
// and extracts the network serializable transaction
func (w *Wallet) SignTransaction(opts SignTransactionOpts) (*wire.MsgTx, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := w.validate(); err != nil {
		return nil, err
	}

	ptx := opts.Packet
	prevouts := make(map[wire.OutPoint]*wire.TxOut, len(ptx.Inputs))
	for i, in := range ptx.Inputs {
		prevouts[ptx.UnsignedTx.TxIn[i].PreviousOutPoint] = in.WitnessUtxo
	}
	sigHashes := txscript.NewTxSigHashes(
		ptx.UnsignedTx, txscript.NewMultiPrevOutFetcher(prevouts),
	)

	for i, in := range ptx.Inputs {
		path := opts.DerivationPathMap[hex.EncodeToString(in.WitnessUtxo.PkScript)]
		if err := w.signInput(ptx, i, path, sigHashes); err != nil {
			return nil, err
		}
	}

	if err := psbt.MaybeFinalizeAll(ptx); err != nil {
		return nil, err
	}
	return psbt.Extract(ptx)
}

func (w *Wallet) signInput(
	ptx *psbt.Packet,
	inIndex int,
	derivationPath string,
	sigHashes *txscript.TxSigHashes,
) error {
	updater, err := psbt.NewUpdater(ptx)
	if err != nil {
		return err
	}

	prvkey, pubkey, err := w.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
		DerivationPath: derivationPath,
	})
	if err != nil {
		return err
	}

	prevout := ptx.Inputs[inIndex].WitnessUtxo
	sig, err := txscript.RawTxInWitnessSignature(
		ptx.UnsignedTx, sigHashes, inIndex, prevout.Value, prevout.PkScript,
		txscript.SigHashAll, prvkey,
	)
	if err != nil {
		return err
	}

	outcome, err := updater.Sign(
		inIndex, sig, pubkey.SerializeCompressed(), nil, nil,
	)
	if err != nil {
		return err
	}
	if outcome != psbt.SignSuccesful {
		return fmt.Errorf("failed to sign input %d", inIndex)
	}
	return nil
}
