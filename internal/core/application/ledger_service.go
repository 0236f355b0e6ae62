package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/houseofbtc/houseledger/internal/core/domain"
	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
)

// DefaultOperationTimeout bounds every operation of the ledger service when
// no timeout is configured.
const DefaultOperationTimeout = 30 * time.Second

var (
	// ErrNullHouse ...
	ErrNullHouse = errors.New("head of the house must not be null")
	// ErrNullUserRepository ...
	ErrNullUserRepository = errors.New("user repository must not be null")
)

// Balance is the balance view of an account.
type Balance struct {
	AccountID             int
	UtxoBalance           uint64
	TransferredFromMaster uint64
	EffectiveBalance      uint64
}

// SpendResult is the result of a spend made on behalf of an account.
type SpendResult struct {
	Outcome     SpendOutcome
	Transaction domain.TransactionRecord
}

// PendingInfo lists the pending transactions of an account.
type PendingInfo struct {
	AccountID    int
	Transactions []domain.TransactionRecord
	Total        uint64
}

// MasterInfo is the global view of the master account.
type MasterInfo struct {
	ChainTotal            uint64
	TransferredToChildren uint64
	Available             uint64
	PendingSpendTotal     uint64
	Addresses             int
	Accounts              int
}

// LedgerService is the serialization boundary of the ledger: every call is
// applied one at a time and bounded by the operation timeout.
type LedgerService interface {
	// Connect attaches the master account to the chain.
	Connect(ctx context.Context, endpoint string) error
	// Restore registers the account of every persisted user.
	Restore(ctx context.Context) error
	SignUp(ctx context.Context, user domain.User) (*domain.User, error)
	IssueAddress(ctx context.Context, accountID int) (string, error)
	Spend(
		ctx context.Context, accountID int, amount uint64, destination string,
	) (*SpendResult, error)
	GetBalance(ctx context.Context, accountID int) (*Balance, error)
	TransferFromMaster(ctx context.Context, accountID int, amount uint64) error
	TransferToMaster(ctx context.Context, accountID int, amount uint64) error
	GetPending(ctx context.Context, accountID int) (*PendingInfo, error)
	RefreshPending(ctx context.Context) (int, error)
	GetMasterInfo(ctx context.Context) (*MasterInfo, error)
}

// LedgerServiceOpts is the struct given to NewLedgerService.
type LedgerServiceOpts struct {
	House            *HeadOfTheHouse
	UserRepository   domain.UserRepository
	OperationTimeout time.Duration
	Clock            clock.Clock
}

func (o LedgerServiceOpts) validate() error {
	if o.House == nil {
		return ErrNullHouse
	}
	if o.UserRepository == nil {
		return ErrNullUserRepository
	}
	return nil
}

type ledgerService struct {
	lock     *sync.Mutex
	house    *HeadOfTheHouse
	userRepo domain.UserRepository
	timeout  time.Duration
	clock    clock.Clock
}

// NewLedgerService returns the LedgerService wrapping the given house.
func NewLedgerService(opts LedgerServiceOpts) (LedgerService, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	timeout := opts.OperationTimeout
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewDefaultClock()
	}

	return &ledgerService{
		lock:     &sync.Mutex{},
		house:    opts.House,
		userRepo: opts.UserRepository,
		timeout:  timeout,
		clock:    clk,
	}, nil
}

func (s *ledgerService) Connect(ctx context.Context, endpoint string) error {
	return s.run(ctx, domain.ErrSyncElectrum, func(ctx context.Context) error {
		return s.house.Master().AttachToChain(ctx, endpoint)
	})
}

func (s *ledgerService) Restore(ctx context.Context) error {
	users, err := s.userRepo.GetAllUsers(ctx)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	for _, user := range users {
		permissions, err := domain.ParsePermissionSet(user.Permissions)
		if err != nil {
			return err
		}
		if err := s.house.RegisterUser(
			user.AccountID, user.Username, permissions,
		); err != nil {
			log.WithError(err).WithField("username", user.Username).Warn(
				"skipped restoring user",
			)
		}
	}

	log.Infof("restored %d user accounts", len(users))
	return nil
}

func (s *ledgerService) SignUp(
	ctx context.Context, user domain.User,
) (*domain.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if len(user.Permissions) <= 0 {
		user.Permissions = []string{domain.PermissionReceive.String()}
	}
	permissions, err := domain.ParsePermissionSet(user.Permissions)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	accountID, err := s.userRepo.NextAccountID(ctx)
	if err != nil {
		return nil, err
	}
	user.AccountID = accountID
	user.Permissions = permissions.Strings()
	user.CreatedAt = s.clock.Now().Unix()

	if err := s.house.RegisterUser(
		accountID, user.Username, permissions,
	); err != nil {
		return nil, err
	}
	if err := s.userRepo.AddUser(ctx, user); err != nil {
		if rollbackErr := s.house.UnregisterUser(accountID); rollbackErr != nil {
			log.WithError(rollbackErr).WithField("account_id", accountID).Warn(
				"failed to roll back account registration",
			)
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"username":   user.Username,
		"account_id": accountID,
	}).Info("user signed up")
	return &user, nil
}

func (s *ledgerService) IssueAddress(
	ctx context.Context, accountID int,
) (string, error) {
	var addr string
	err := s.run(ctx, domain.ErrSyncElectrum, func(ctx context.Context) error {
		a, err := s.house.IssueAddressFor(accountID)
		if err != nil {
			return err
		}
		addr = a.EncodeAddress()
		return nil
	})
	if err != nil {
		return "", err
	}
	return addr, nil
}

func (s *ledgerService) Spend(
	ctx context.Context, accountID int, amount uint64, destination string,
) (*SpendResult, error) {
	var result *SpendResult
	err := s.run(ctx, domain.ErrBroadcastTransaction, func(ctx context.Context) error {
		outcome, tx, err := s.house.SpendOnBehalfOf(
			ctx, accountID, amount, destination,
		)
		if err != nil {
			return err
		}
		result = &SpendResult{outcome, tx}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ledgerService) GetBalance(
	ctx context.Context, accountID int,
) (*Balance, error) {
	var balance *Balance
	err := s.run(ctx, domain.ErrSyncElectrum, func(ctx context.Context) error {
		effectiveBalance, err := s.house.EffectiveBalance(ctx, accountID)
		if err != nil {
			return err
		}
		account, _ := s.house.GetAccount(accountID)
		balance = &Balance{
			AccountID:             accountID,
			UtxoBalance:           account.UtxoBalance(),
			TransferredFromMaster: account.TransferredFromMaster(),
			EffectiveBalance:      effectiveBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (s *ledgerService) TransferFromMaster(
	ctx context.Context, accountID int, amount uint64,
) error {
	return s.run(ctx, domain.ErrSyncElectrum, func(ctx context.Context) error {
		return s.house.TransferMasterToChild(ctx, amount, accountID)
	})
}

func (s *ledgerService) TransferToMaster(
	ctx context.Context, accountID int, amount uint64,
) error {
	return s.run(ctx, domain.ErrSyncElectrum, func(_ context.Context) error {
		return s.house.TransferChildToMaster(amount, accountID)
	})
}

func (s *ledgerService) GetPending(
	ctx context.Context, accountID int,
) (*PendingInfo, error) {
	var info *PendingInfo
	err := s.run(ctx, domain.ErrSyncElectrum, func(_ context.Context) error {
		total, err := s.house.PendingSpendAmount(accountID)
		if err != nil {
			return err
		}
		account, _ := s.house.GetAccount(accountID)
		info = &PendingInfo{
			AccountID:    accountID,
			Transactions: account.PendingTransactions(),
			Total:        total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (s *ledgerService) RefreshPending(ctx context.Context) (int, error) {
	var settled int
	err := s.run(ctx, domain.ErrSyncElectrum, func(ctx context.Context) error {
		var err error
		settled, err = s.house.RefreshPendingTransactions(ctx)
		return err
	})
	return settled, err
}

func (s *ledgerService) GetMasterInfo(ctx context.Context) (*MasterInfo, error) {
	var info *MasterInfo
	err := s.run(ctx, domain.ErrSyncElectrum, func(ctx context.Context) error {
		master := s.house.Master()
		total, err := master.ChainTotal(ctx)
		if err != nil {
			return err
		}
		pending, err := master.PendingSpendTotal()
		if err != nil {
			return err
		}

		info = &MasterInfo{
			ChainTotal:            total,
			TransferredToChildren: master.TransferredToChildren(),
			PendingSpendTotal:     pending,
			Addresses:             len(master.AllAddresses()),
			Accounts:              len(s.house.Accounts()),
		}
		if total > info.TransferredToChildren {
			info.Available = total - info.TransferredToChildren
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// run applies f while holding the service lock, with a context bounded by
// the operation timeout. If f fails after the timeout expired, the error
// returned is a WalletError of the given kind. A successful f is never
// reported as failed, its side effects are already applied.
func (s *ledgerService) run(
	ctx context.Context, timeoutKind error, f func(ctx context.Context) error,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := f(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.WithError(err).Warn("ledger operation timed out")
		return domain.NewWalletError(timeoutKind, ctx.Err())
	}
	return err
}
