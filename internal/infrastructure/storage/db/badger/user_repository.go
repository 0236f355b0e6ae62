package dbbadger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/houseofbtc/houseledger/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const usersDir = "users"

type userRecord struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	AccountID   int `badgerholdIndex:"AccountID"`
	Permissions []string
	CreatedAt   int64
}

type userRepository struct {
	store *badgerhold.Store
}

// NewUserRepository opens (or creates if not exists) the badger store on
// disk under the given base dir and returns a user repository backed by it.
// An empty base dir opens an in-memory store. The logger is optional.
func NewUserRepository(
	baseDbDir string, logger badger.Logger,
) (domain.UserRepository, error) {
	dbDir := ""
	if baseDbDir != "" {
		dbDir = filepath.Join(baseDbDir, usersDir)
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening users db: %w", err)
	}
	return &userRepository{store}, nil
}

func (r *userRepository) AddUser(_ context.Context, user domain.User) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var sameAccount []userRecord
		if err := r.store.TxFind(
			tx, &sameAccount,
			badgerhold.Where("AccountID").Eq(user.AccountID),
		); err != nil {
			return err
		}
		if len(sameAccount) > 0 {
			return domain.ErrUserAlreadyExists
		}

		if err := r.store.TxInsert(tx, user.Username, toRecord(user)); err != nil {
			if errors.Is(err, badgerhold.ErrKeyExists) {
				return domain.ErrUserAlreadyExists
			}
			return err
		}
		return nil
	})
}

func (r *userRepository) GetUserByUsername(
	_ context.Context, username string,
) (*domain.User, error) {
	var record userRecord
	if err := r.store.Get(username, &record); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	user := record.toDomain()
	return &user, nil
}

func (r *userRepository) GetUserByAccountID(
	_ context.Context, accountID int,
) (*domain.User, error) {
	var records []userRecord
	if err := r.store.Find(
		&records, badgerhold.Where("AccountID").Eq(accountID),
	); err != nil {
		return nil, err
	}
	if len(records) <= 0 {
		return nil, domain.ErrUserNotFound
	}
	user := records[0].toDomain()
	return &user, nil
}

func (r *userRepository) GetAllUsers(_ context.Context) ([]domain.User, error) {
	var records []userRecord
	if err := r.store.Find(
		&records, (&badgerhold.Query{}).SortBy("AccountID"),
	); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(records))
	for _, rec := range records {
		users = append(users, rec.toDomain())
	}
	return users, nil
}

func (r *userRepository) NextAccountID(_ context.Context) (int, error) {
	var records []userRecord
	if err := r.store.Find(
		&records, (&badgerhold.Query{}).SortBy("AccountID").Reverse().Limit(1),
	); err != nil {
		return -1, err
	}

	last := domain.MainAccountID
	if len(records) > 0 && records[0].AccountID > last {
		last = records[0].AccountID
	}
	return last + 1, nil
}

func (r *userRepository) Close() {
	r.store.Close()
}

func toRecord(u domain.User) userRecord {
	return userRecord{
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		AccountID:   u.AccountID,
		Permissions: u.Permissions,
		CreatedAt:   u.CreatedAt,
	}
}

func (r userRecord) toDomain() domain.User {
	return domain.User{
		Username:    r.Username,
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		AccountID:   r.AccountID,
		Permissions: r.Permissions,
		CreatedAt:   r.CreatedAt,
	}
}
