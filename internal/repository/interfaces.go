package repository

import (
	"context"

	"facebrain/internal/domain/user"
)

type UserRepository interface {
	// Register inserts the user row and its credential row in one transaction.
	// On success u carries the store-generated ID, Entries and Joined.
	Register(ctx context.Context, u *user.User, hash string) error

	GetCredentialByEmail(ctx context.Context, email string) (user.Credential, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	GetUserByID(ctx context.Context, id int64) (user.User, error)

	// IncrementEntries atomically adds one to the user's entries and returns the updated row.
	IncrementEntries(ctx context.Context, id int64) (user.User, error)
}
