package domain

import (
	"context"
	"net/mail"
	"strings"
)

// User is the profile of a person signed up to the house. Each user owns
// exactly one account, identified by AccountID.
type User struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	AccountID   int
	Permissions []string
	CreatedAt   int64
}

// Validate checks the user's mandatory fields.
func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrInvalidUsername
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// UserRepository is the abstraction for any kind of database intended to
// persist signed up users.
type UserRepository interface {
	// AddUser persists a new user. It fails with ErrUserAlreadyExists if the
	// username or the account id are already taken.
	AddUser(ctx context.Context, user User) error
	// GetUserByUsername returns the user with the given username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	// GetUserByAccountID returns the user owning the given account.
	GetUserByAccountID(ctx context.Context, accountID int) (*User, error)
	// GetAllUsers returns all users sorted by account id.
	GetAllUsers(ctx context.Context) ([]User, error)
	// NextAccountID returns an account id not yet assigned to any user.
	NextAccountID(ctx context.Context) (int, error)
	// Close releases the underlying resources.
	Close()
}
