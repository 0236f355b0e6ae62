package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/houseofbtc/houseledger/internal/core/domain"
)

type userRepository struct {
	locker     *sync.RWMutex
	users      map[string]domain.User
	byAccount  map[int]string
	lastAccnID int
}

// NewUserRepository returns a new empty in memory user repository.
func NewUserRepository() domain.UserRepository {
	return &userRepository{
		locker:     &sync.RWMutex{},
		users:      make(map[string]domain.User),
		byAccount:  make(map[int]string),
		lastAccnID: domain.MainAccountID,
	}
}

func (r *userRepository) AddUser(_ context.Context, user domain.User) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return domain.ErrUserAlreadyExists
	}
	if _, ok := r.byAccount[user.AccountID]; ok {
		return domain.ErrUserAlreadyExists
	}

	r.users[user.Username] = copyUser(user)
	r.byAccount[user.AccountID] = user.Username
	if user.AccountID > r.lastAccnID {
		r.lastAccnID = user.AccountID
	}
	return nil
}

func (r *userRepository) GetUserByUsername(
	_ context.Context, username string,
) (*domain.User, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := copyUser(user)
	return &u, nil
}

func (r *userRepository) GetUserByAccountID(
	_ context.Context, accountID int,
) (*domain.User, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	username, ok := r.byAccount[accountID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := copyUser(r.users[username])
	return &u, nil
}

func (r *userRepository) GetAllUsers(_ context.Context) ([]domain.User, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, copyUser(u))
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].AccountID < users[j].AccountID
	})
	return users, nil
}

func (r *userRepository) NextAccountID(_ context.Context) (int, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	return r.lastAccnID + 1, nil
}

func (r *userRepository) Close() {}

func copyUser(u domain.User) domain.User {
	perms := make([]string, len(u.Permissions))
	copy(perms, u.Permissions)
	u.Permissions = perms
	return u
}
