package application

import (
	"bytes"
	"context"
	"errors"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/houseofbtc/houseledger/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

// DefaultFeeRate is the fee rate in sat/vB used when none is configured.
const DefaultFeeRate = 1

// SpendOutcome tells whether a spend was already confirmed when returned.
type SpendOutcome int

const (
	// SpendPending means the transaction was broadcast but not yet
	// confirmed.
	SpendPending SpendOutcome = iota
	// SpendConfirmed means the transaction was already in a block.
	SpendConfirmed
)

func (o SpendOutcome) String() string {
	if o == SpendConfirmed {
		return "confirmed"
	}
	return "pending"
}

// HeadOfTheHouseOpts is the struct given to NewHeadOfTheHouse.
type HeadOfTheHouseOpts struct {
	MasterAccountOpts
	// FeeRate in sat/vB used for every spend.
	FeeRate uint64
}

// HeadOfTheHouse is the policy engine of the ledger: it owns the accounts and
// the master account, authorizes spends and moves credit between master and
// children. It is not safe for concurrent use.
type HeadOfTheHouse struct {
	master   *MasterAccount
	accounts []*domain.Account
	children *domain.Children
	feeRate  uint64
}

// NewHeadOfTheHouse creates the master account and registers the main
// account with full permissions.
func NewHeadOfTheHouse(opts HeadOfTheHouseOpts) (*HeadOfTheHouse, error) {
	master, err := NewMasterAccount(opts.MasterAccountOpts)
	if err != nil {
		return nil, err
	}

	feeRate := opts.FeeRate
	if feeRate == 0 {
		feeRate = DefaultFeeRate
	}

	h := &HeadOfTheHouse{
		master:   master,
		accounts: make([]*domain.Account, 0),
		children: domain.NewChildren(),
		feeRate:  feeRate,
	}
	if err := h.RegisterUser(
		domain.MainAccountID, domain.MainAccountName, domain.FullPermissions(),
	); err != nil {
		return nil, err
	}
	return h, nil
}

// Master returns the master account.
func (h *HeadOfTheHouse) Master() *MasterAccount {
	return h.master
}

// RegisterUser creates the child entry and the account of a new user.
// Duplicate ids are rejected.
func (h *HeadOfTheHouse) RegisterUser(
	id int, name string, permissions domain.PermissionSet,
) error {
	if _, ok := h.GetAccount(id); ok {
		log.WithField("account_id", id).Warn("rejected duplicate account")
		return domain.NewAccountError(
			domain.ErrAccountDefault, domain.ErrAccountAlreadyExists,
		)
	}

	h.children.AddChild(id, name)
	h.accounts = append(h.accounts, domain.NewAccount(id, permissions))

	log.WithFields(log.Fields{
		"account_id":  id,
		"name":        name,
		"permissions": permissions.String(),
	}).Debug("registered account")
	return nil
}

// UnregisterUser drops an account that has seen no activity together with
// its child entry. The main account can't be removed.
func (h *HeadOfTheHouse) UnregisterUser(id int) error {
	if id == domain.MainAccountID {
		return domain.NewAccountError(domain.ErrAccountDefault, domain.ErrAccountInUse)
	}

	for i, account := range h.accounts {
		if account.ID() != id {
			continue
		}
		if len(account.Addresses()) > 0 ||
			len(account.PendingTransactions()) > 0 ||
			account.TransferredFromMaster() > 0 {
			return domain.NewAccountError(
				domain.ErrAccountDefault, domain.ErrAccountInUse,
			)
		}

		h.accounts = append(h.accounts[:i], h.accounts[i+1:]...)
		h.children.RemoveChild(id)

		log.WithField("account_id", id).Debug("unregistered account")
		return nil
	}
	return domain.NewAccountError(domain.ErrAccountDoesNotExist, nil)
}

// GetAccount returns the account with the given id.
func (h *HeadOfTheHouse) GetAccount(id int) (*domain.Account, bool) {
	for _, account := range h.accounts {
		if account.ID() == id {
			return account, true
		}
	}
	return nil, false
}

// Accounts returns all the accounts in registration order.
func (h *HeadOfTheHouse) Accounts() []*domain.Account {
	accounts := make([]*domain.Account, len(h.accounts))
	copy(accounts, h.accounts)
	return accounts
}

// Children returns the registry of the users of the house.
func (h *HeadOfTheHouse) Children() []domain.Child {
	return h.children.All()
}

// IssueAddressFor issues a new wallet address and assigns it to the account.
func (h *HeadOfTheHouse) IssueAddressFor(id int) (btcutil.Address, error) {
	account, ok := h.GetAccount(id)
	if !ok {
		return nil, domain.NewWalletError(
			domain.ErrAddress, domain.ErrAccountDoesNotExist,
		)
	}

	addr, err := h.master.IssueNewAddress()
	if err != nil {
		return nil, err
	}
	account.AddAddress(addr)
	return addr, nil
}

// SpendOnBehalfOf pays amount to destination from the shared wallet, on
// behalf of the given account. Any authorization or wallet failure is
// returned as ErrInsufficientAccount, without side effects on the books.
func (h *HeadOfTheHouse) SpendOnBehalfOf(
	ctx context.Context, id int, amount uint64, destination string,
) (SpendOutcome, domain.TransactionRecord, error) {
	account, ok := h.GetAccount(id)
	if !ok || !account.HasSendPermission() {
		return SpendPending, domain.TransactionRecord{}, domain.NewAccountError(
			domain.ErrInsufficientAccount, nil,
		)
	}

	effectiveBalance, err := h.EffectiveBalance(ctx, id)
	if err != nil {
		return SpendPending, domain.TransactionRecord{}, coarsen("spend", err)
	}
	if effectiveBalance <= amount {
		return SpendPending, domain.TransactionRecord{}, domain.NewAccountError(
			domain.ErrInsufficientAccount, nil,
		)
	}

	utxoFloor := account.UtxoBalance()

	tx, err := h.master.Spend(ctx, amount, destination, h.feeRate)
	if err != nil {
		return SpendPending, domain.TransactionRecord{}, coarsen("spend", err)
	}

	if tx.IsConfirmed() {
		return SpendConfirmed, tx, nil
	}

	if amount > utxoFloor {
		account.UpdateUtxoBalance(0)
	} else {
		// cannot fail, amount <= balance.
		_ = account.Subtract(amount)
	}

	if id != domain.MainAccountID && amount > utxoFloor {
		h.drawShortfall(account, tx, amount, utxoFloor)
	}
	account.RecordPendingTransaction(tx)

	return SpendPending, tx, nil
}

// drawShortfall moves the part of a spend not covered by the account's utxo
// floor out of the credit transferred from master, on both books.
func (h *HeadOfTheHouse) drawShortfall(
	account *domain.Account, tx domain.TransactionRecord, amount, utxoFloor uint64,
) {
	shortfall := amount - utxoFloor
	tx.Fee.WhenSome(func(fee uint64) {
		shortfall += fee
	})
	if tx.Fee.IsNone() {
		log.WithField("txid", tx.TxID).Warn(
			"unknown fee, drawing shortfall without it",
		)
	}

	if shortfall > account.TransferredFromMaster() {
		log.WithFields(log.Fields{
			"account_id":  account.ID(),
			"txid":        tx.TxID,
			"shortfall":   shortfall,
			"transferred": account.TransferredFromMaster(),
		}).Warn("shortfall exceeds transferred credit, draining it")
		shortfall = account.TransferredFromMaster()
	}

	if err := account.DecreaseTransferred(shortfall); err != nil {
		log.WithError(err).Warn("failed to draw shortfall from account")
		return
	}
	if err := h.master.RecordTransferFromChild(shortfall); err != nil {
		log.WithError(err).Warn("failed to draw shortfall from master")
		// cannot fail, the amount was just decreased.
		_ = account.IncreaseTransferred(shortfall)
	}
}

// AccountUtxoBalance syncs the wallet and sums the value of the UTXOs locked
// by the account's addresses. The result is cached in the account.
func (h *HeadOfTheHouse) AccountUtxoBalance(
	ctx context.Context, id int,
) (uint64, error) {
	account, ok := h.GetAccount(id)
	if !ok {
		return 0, domain.NewAccountError(domain.ErrAccountDoesNotExist, nil)
	}

	if err := h.master.Sync(ctx); err != nil {
		return 0, err
	}

	scripts, err := account.AddressesAsLockingScripts()
	if err != nil {
		return 0, err
	}

	var balance uint64
	for _, u := range h.master.Unspents() {
		for _, script := range scripts {
			if bytes.Equal(u.Script(), script) {
				balance += u.Value()
				break
			}
		}
	}

	account.UpdateUtxoBalance(balance)
	return balance, nil
}

// EffectiveBalance returns the account's utxo balance plus the credit
// transferred from master.
func (h *HeadOfTheHouse) EffectiveBalance(
	ctx context.Context, id int,
) (uint64, error) {
	if _, err := h.AccountUtxoBalance(ctx, id); err != nil {
		return 0, err
	}
	account, _ := h.GetAccount(id)
	return account.EffectiveBalance()
}

// TransferMasterToChild credits amount to the child if the master can
// afford it without touching what is already promised to other children.
func (h *HeadOfTheHouse) TransferMasterToChild(
	ctx context.Context, amount uint64, childID int,
) error {
	account, ok := h.GetAccount(childID)
	if !ok {
		return domain.NewAccountError(domain.ErrAccountDoesNotExist, nil)
	}

	available, err := h.master.ChainTotalMinusTransferred(ctx)
	if err != nil {
		return coarsen("transfer_master_to_child", err)
	}
	if available < amount {
		return domain.NewAccountError(domain.ErrInsufficientAccount, nil)
	}

	if err := account.IncreaseTransferred(amount); err != nil {
		return err
	}
	if err := h.master.RecordTransferToChild(amount); err != nil {
		// cannot fail, the amount was just increased.
		_ = account.DecreaseTransferred(amount)
		return err
	}
	return nil
}

// TransferChildToMaster gives back amount of the child's transferred credit.
func (h *HeadOfTheHouse) TransferChildToMaster(amount uint64, childID int) error {
	account, ok := h.GetAccount(childID)
	if !ok {
		return domain.NewAccountError(domain.ErrAccountDoesNotExist, nil)
	}
	if account.TransferredFromMaster() < amount {
		return domain.NewAccountError(domain.ErrInsufficientAccount, nil)
	}

	if err := account.DecreaseTransferred(amount); err != nil {
		return err
	}
	if err := h.master.RecordTransferFromChild(amount); err != nil {
		// cannot fail, the amount was just decreased.
		_ = account.IncreaseTransferred(amount)
		return coarsen("transfer_child_to_master", err)
	}
	return nil
}

// PendingSpendAmount returns sent + fee over the account's pending
// transactions.
func (h *HeadOfTheHouse) PendingSpendAmount(id int) (uint64, error) {
	account, ok := h.GetAccount(id)
	if !ok {
		return 0, domain.NewAccountError(domain.ErrAccountDoesNotExist, nil)
	}
	return account.PendingSpendAmount()
}

// RefreshPendingTransactions settles the confirmed transactions of the
// master account and prunes them from every account. It returns the number
// of account entries settled.
func (h *HeadOfTheHouse) RefreshPendingTransactions(
	ctx context.Context,
) (int, error) {
	if _, err := h.master.RefreshPendingTransactions(ctx); err != nil {
		return 0, err
	}

	settled := 0
	for _, account := range h.accounts {
		settled += account.PrunePendingTransactions(func(txid string) bool {
			return !h.master.IsPending(txid)
		})
	}
	return settled, nil
}

// coarsen maps any error raised while serving an account-level operation to
// ErrInsufficientAccount, after logging it. Account errors of other kinds are
// returned as they are.
func coarsen(op string, err error) error {
	if errors.Is(err, domain.ErrAccountDoesNotExist) ||
		errors.Is(err, domain.ErrInsufficientAccount) {
		return err
	}

	log.WithError(err).WithField("op", op).Warn(
		"operation failed, reporting insufficient account",
	)
	return domain.NewAccountError(domain.ErrInsufficientAccount, nil)
}
