package explorer

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

var (
	// ErrNullUtxoScript ...
	ErrNullUtxoScript = errors.New("utxo script must not be null")
)

// Utxo represents a transaction output in the bitcoin chain.
type Utxo interface {
	Hash() string
	Index() uint32
	Value() uint64
	Script() []byte
	Address() string
	IsConfirmed() bool
	BlockHeight() uint32
	Key() string
	SetScript(script []byte)
	Parse() (*wire.TxIn, *wire.TxOut, error)
}

// NewWitnessUtxo returns a new Utxo for the given outpoint.
func NewWitnessUtxo(
	hash string,
	index uint32,
	value uint64,
	addr string,
	script []byte,
	status TxStatus,
) Utxo {
	return &witnessUtxo{
		UHash:    hash,
		UIndex:   index,
		UValue:   value,
		UAddress: addr,
		UScript:  script,
		UStatus:  status,
	}
}

// TxStatus is the default implementation of TransactionStatus and matches
// the status object returned by Esplora.
type TxStatus struct {
	IsConfirmed bool   `json:"confirmed"`
	Height      uint32 `json:"block_height,omitempty"`
	Hash        string `json:"block_hash,omitempty"`
	Time        int64  `json:"block_time,omitempty"`
}

func (s TxStatus) Confirmed() bool {
	return s.IsConfirmed
}

func (s TxStatus) BlockHeight() uint32 {
	return s.Height
}

func (s TxStatus) BlockHash() string {
	return s.Hash
}

func (s TxStatus) BlockTime() int64 {
	return s.Time
}

type witnessUtxo struct {
	UHash    string
	UIndex   uint32
	UValue   uint64
	UStatus  TxStatus
	UAddress string
	UScript  []byte
}

func (wu *witnessUtxo) Hash() string {
	return wu.UHash
}

func (wu *witnessUtxo) Index() uint32 {
	return wu.UIndex
}

func (wu *witnessUtxo) Value() uint64 {
	return wu.UValue
}

func (wu *witnessUtxo) Script() []byte {
	return wu.UScript
}

func (wu *witnessUtxo) Address() string {
	return wu.UAddress
}

func (wu *witnessUtxo) IsConfirmed() bool {
	return wu.UStatus.IsConfirmed
}

func (wu *witnessUtxo) BlockHeight() uint32 {
	return wu.UStatus.Height
}

func (wu *witnessUtxo) Key() string {
	return fmt.Sprintf("%s:%d", wu.UHash, wu.UIndex)
}

func (wu *witnessUtxo) SetScript(script []byte) {
	wu.UScript = script
}

func (wu *witnessUtxo) Parse() (*wire.TxIn, *wire.TxOut, error) {
	if len(wu.UScript) <= 0 {
		return nil, nil, ErrNullUtxoScript
	}
	hash, err := chainhash.NewHashFromStr(wu.UHash)
	if err != nil {
		return nil, nil, err
	}
	in := wire.NewTxIn(wire.NewOutPoint(hash, wu.UIndex), nil, nil)
	out := wire.NewTxOut(int64(wu.UValue), wu.UScript)
	return in, out, nil
}
