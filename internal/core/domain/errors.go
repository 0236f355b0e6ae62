package domain

import (
	"errors"
	"fmt"
)

// Account error kinds.
var (
	// ErrAccountDoesNotExist is returned when an account lookup by id fails.
	ErrAccountDoesNotExist = errors.New("account does not exist")
	// ErrInsufficientAccount is returned when permission, balance or a
	// downstream wallet failure prevents the requested action.
	ErrInsufficientAccount = errors.New(
		"account is insufficient to take desired action",
	)
	// ErrAccountDefault wraps lower-level faults at construction time.
	ErrAccountDefault = errors.New("default account error")
)

// Wallet error kinds.
var (
	// ErrSyncElectrum is returned on chain connect/sync failures or when
	// acting without an attached chain connection.
	ErrSyncElectrum = errors.New("error syncing electrum server")
	// ErrAddress is returned for malformed or underivable addresses.
	ErrAddress = errors.New("bitcoin address error")
	// ErrBroadcastTransaction is returned when there's no chain connection or
	// the broadcast is rejected.
	ErrBroadcastTransaction = errors.New("error broadcasting transaction")
	// ErrKey is returned on seed/key derivation and signing failures.
	ErrKey = errors.New("key error")
)

var (
	// ErrAccountAlreadyExists is the cause attached to the default account
	// error returned when registering a duplicate account id.
	ErrAccountAlreadyExists = errors.New("account already exists")
	// ErrUnknownFee is the cause returned when summing the spend total of a
	// pending transaction whose fee was not recorded.
	ErrUnknownFee = errors.New("transaction fee is unknown")
	// ErrAmountOverflow is the cause returned when adding amounts overflows.
	ErrAmountOverflow = errors.New("amount overflows")
	// ErrAccountInUse is the cause returned when removing an account that
	// already has addresses, pending transactions or transferred credit.
	ErrAccountInUse = errors.New("account is in use")
	// ErrUserAlreadyExists ...
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound ...
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidUsername ...
	ErrInvalidUsername = errors.New("username must not be empty")
	// ErrInvalidEmail ...
	ErrInvalidEmail = errors.New("email is not valid")
)

// AccountError is the error returned by account-level operations. Kind is one
// of ErrAccountDoesNotExist, ErrInsufficientAccount or ErrAccountDefault.
type AccountError struct {
	Kind  error
	Cause error
}

// NewAccountError returns an *AccountError of the given kind, optionally
// carrying the underlying cause.
func NewAccountError(kind, cause error) *AccountError {
	return &AccountError{Kind: kind, Cause: cause}
}

func (e *AccountError) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
}

func (e *AccountError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// WalletError is the error returned by wallet-custody operations. Kind is one
// of ErrSyncElectrum, ErrAddress, ErrBroadcastTransaction or ErrKey.
type WalletError struct {
	Kind  error
	Cause error
}

// NewWalletError returns a *WalletError of the given kind, optionally
// carrying the underlying cause.
func NewWalletError(kind, cause error) *WalletError {
	return &WalletError{Kind: kind, Cause: cause}
}

func (e *WalletError) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
}

func (e *WalletError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// IsWalletError returns whether err is, or wraps, a *WalletError.
func IsWalletError(err error) bool {
	var werr *WalletError
	return errors.As(err, &werr)
}
