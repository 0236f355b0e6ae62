package domain

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
)

// MainAccountID is the id of the master's own account, registered when the
// coordinator is created.
const MainAccountID = 1

// MainAccountName is the display name of the main account.
const MainAccountName = "main"

// Account is the per-user ledger. Its utxo balance is a cache of the last
// UTXO scan and is not authoritative between scans. The spendable balance is
// EffectiveBalance, utxo balance plus the credit transferred from master.
type Account struct {
	id                    int
	permissions           PermissionSet
	utxoBalance           uint64
	addresses             []btcutil.Address
	pendingTransactions   []TransactionRecord
	transferredFromMaster uint64
}

// NewAccount returns an account with zeroed balances.
func NewAccount(id int, permissions PermissionSet) *Account {
	return &Account{
		id:                  id,
		permissions:         permissions,
		addresses:           make([]btcutil.Address, 0),
		pendingTransactions: make([]TransactionRecord, 0),
	}
}

func (a *Account) ID() int {
	return a.id
}

func (a *Account) Permissions() PermissionSet {
	return a.permissions
}

// SetPermissions replaces the account's permission set as a whole.
func (a *Account) SetPermissions(permissions PermissionSet) {
	a.permissions = permissions
}

func (a *Account) UtxoBalance() uint64 {
	return a.utxoBalance
}

// UpdateUtxoBalance overwrites the cached balance with the result of a fresh
// UTXO scan.
func (a *Account) UpdateUtxoBalance(amount uint64) {
	a.utxoBalance = amount
}

func (a *Account) TransferredFromMaster() uint64 {
	return a.transferredFromMaster
}

// Addresses returns a copy of the addresses issued to the account, in
// issuance order.
func (a *Account) Addresses() []btcutil.Address {
	addresses := make([]btcutil.Address, len(a.addresses))
	copy(addresses, a.addresses)
	return addresses
}

// PendingTransactions returns a copy of the account's pending transactions.
func (a *Account) PendingTransactions() []TransactionRecord {
	txs := make([]TransactionRecord, len(a.pendingTransactions))
	copy(txs, a.pendingTransactions)
	return txs
}

// HasSendPermission returns whether the account is allowed to spend.
func (a *Account) HasSendPermission() bool {
	return a.permissions.Has(PermissionSend)
}

// HasSufficientBalance returns whether the cached utxo balance is strictly
// greater than amount. An amount equal to the balance is insufficient since
// it leaves nothing for the fee.
func (a *Account) HasSufficientBalance(amount uint64) bool {
	return a.utxoBalance > amount
}

// Subtract decreases the cached utxo balance by amount. It fails without
// touching the balance if amount exceeds it.
func (a *Account) Subtract(amount uint64) error {
	if amount > a.utxoBalance {
		return NewAccountError(ErrInsufficientAccount, nil)
	}
	a.utxoBalance -= amount
	return nil
}

// AddAddress appends addr to the account's address list.
func (a *Account) AddAddress(addr btcutil.Address) {
	a.addresses = append(a.addresses, addr)
}

// RecordPendingTransaction appends tx to the account's pending list.
func (a *Account) RecordPendingTransaction(tx TransactionRecord) {
	a.pendingTransactions = append(a.pendingTransactions, tx)
}

// PrunePendingTransactions drops the pending transactions for which
// isSettled returns true and returns how many were removed.
func (a *Account) PrunePendingTransactions(isSettled func(txid string) bool) int {
	kept := a.pendingTransactions[:0]
	for _, tx := range a.pendingTransactions {
		if !isSettled(tx.TxID) {
			kept = append(kept, tx)
		}
	}
	removed := len(a.pendingTransactions) - len(kept)
	a.pendingTransactions = kept
	return removed
}

// AddressesAsLockingScripts returns the output script of every address of the
// account, in issuance order.
func (a *Account) AddressesAsLockingScripts() ([][]byte, error) {
	scripts := make([][]byte, 0, len(a.addresses))
	for _, addr := range a.addresses {
		script, err := txscript.PayToAddrScript(addr)
		if err != nil {
			return nil, NewWalletError(ErrAddress, err)
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}

// IncreaseTransferred adds amount to the credit transferred from master.
func (a *Account) IncreaseTransferred(amount uint64) error {
	total, err := addAmounts(a.transferredFromMaster, amount)
	if err != nil {
		return NewAccountError(ErrAccountDefault, err)
	}
	a.transferredFromMaster = total
	return nil
}

// DecreaseTransferred removes amount from the credit transferred from
// master. It fails without touching the credit if amount exceeds it.
func (a *Account) DecreaseTransferred(amount uint64) error {
	if amount > a.transferredFromMaster {
		return NewAccountError(ErrInsufficientAccount, nil)
	}
	a.transferredFromMaster -= amount
	return nil
}

// EffectiveBalance returns utxo balance + transferred credit.
func (a *Account) EffectiveBalance() (uint64, error) {
	total, err := addAmounts(a.utxoBalance, a.transferredFromMaster)
	if err != nil {
		return 0, NewAccountError(ErrAccountDefault, err)
	}
	return total, nil
}

// PendingSpendAmount returns the sum of sent + fee over the account's pending
// transactions. It fails if any fee is unknown.
func (a *Account) PendingSpendAmount() (uint64, error) {
	total, err := SumSpendTotals(a.pendingTransactions)
	if err != nil {
		return 0, NewAccountError(ErrInsufficientAccount, err)
	}
	return total, nil
}
