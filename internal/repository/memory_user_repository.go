package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"facebrain/internal/domain/user"
	facebrain_errors "facebrain/pkg/errors"
)

// MemoryUserRepository is an in-process UserRepository with the same
// uniqueness and atomicity guarantees as the Postgres one.
type MemoryUserRepository struct {
	mu          sync.Mutex
	nextID      int64
	users       map[int64]user.User
	credentials map[string]user.Credential
	now         func() time.Time
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:       make(map[int64]user.User),
		credentials: make(map[string]user.Credential),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryUserRepository) Register(ctx context.Context, u *user.User, hash string) error {
	if err := ctx.Err(); err != nil {
		return translate(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return facebrain_errors.ErrAlreadyExists
		}
	}
	if _, ok := r.credentials[u.Email]; ok {
		return facebrain_errors.ErrAlreadyExists
	}

	r.nextID++
	u.ID = r.nextID
	u.Entries = 0
	if u.Joined.IsZero() {
		u.Joined = r.now()
	}
	r.users[u.ID] = *u
	r.credentials[u.Email] = user.Credential{Email: u.Email, Hash: hash}
	return nil
}

func (r *MemoryUserRepository) GetCredentialByEmail(ctx context.Context, email string) (user.Credential, error) {
	if err := ctx.Err(); err != nil {
		return user.Credential{}, translate(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.credentials[email]
	if !ok {
		return user.Credential{}, facebrain_errors.ErrNotFound
	}
	return c, nil
}

func (r *MemoryUserRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, translate(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, facebrain_errors.ErrNotFound
}

func (r *MemoryUserRepository) GetUserByID(ctx context.Context, id int64) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, translate(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.User{}, facebrain_errors.ErrNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) IncrementEntries(ctx context.Context, id int64) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, translate(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.User{}, facebrain_errors.ErrNotFound
	}
	u.Entries++
	r.users[id] = u
	return u, nil
}

// Counts returns the number of user and credential rows. Used by tests.
func (r *MemoryUserRepository) Counts() (users, credentials int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), len(r.credentials)
}
