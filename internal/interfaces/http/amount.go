package httpinterface

import (
	"errors"
	"math/big"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/shopspring/decimal"
)

const btcDecimals = 8

var (
	// ErrMissingAmount ...
	ErrMissingAmount = errors.New("one of amount_btc or amount_sats is required")
	// ErrAmbiguousAmount ...
	ErrAmbiguousAmount = errors.New(
		"amount_btc and amount_sats are mutually exclusive",
	)
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must be a positive number")
	// ErrAmountPrecision ...
	ErrAmountPrecision = errors.New("amount must not exceed 8 decimal places")
	// ErrAmountTooBig ...
	ErrAmountTooBig = errors.New("amount exceeds the bitcoin supply")
)

var maxSats = decimal.NewFromInt(btcutil.MaxSatoshi)

// Amount is the representation of an amount in responses, in both units.
type Amount struct {
	Sats uint64 `json:"sats"`
	BTC  string `json:"btc"`
}

func newAmount(sats uint64) Amount {
	return Amount{
		Sats: sats,
		BTC:  satsToBTC(sats),
	}
}

// AmountRequest is the amount of a request, given either as a BTC decimal
// string or as an integer number of satoshis.
type AmountRequest struct {
	AmountBTC  string  `json:"amount_btc"`
	AmountSats *uint64 `json:"amount_sats"`
}

// Sats returns the requested amount in satoshis.
func (r AmountRequest) Sats() (uint64, error) {
	if r.AmountBTC != "" && r.AmountSats != nil {
		return 0, ErrAmbiguousAmount
	}
	if r.AmountSats != nil {
		if *r.AmountSats == 0 {
			return 0, ErrInvalidAmount
		}
		if *r.AmountSats > btcutil.MaxSatoshi {
			return 0, ErrAmountTooBig
		}
		return *r.AmountSats, nil
	}
	if r.AmountBTC == "" {
		return 0, ErrMissingAmount
	}
	return btcToSats(r.AmountBTC)
}

func btcToSats(btc string) (uint64, error) {
	amount, err := decimal.NewFromString(btc)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if amount.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}

	sats := amount.Shift(btcDecimals)
	if !sats.Equal(sats.Truncate(0)) {
		return 0, ErrAmountPrecision
	}
	if sats.GreaterThan(maxSats) {
		return 0, ErrAmountTooBig
	}
	return uint64(sats.IntPart()), nil
}

func satsToBTC(sats uint64) string {
	return decimal.NewFromBigInt(
		new(big.Int).SetUint64(sats), -btcDecimals,
	).StringFixed(btcDecimals)
}
