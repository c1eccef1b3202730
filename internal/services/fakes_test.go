package services_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"facebrain/config"
	"facebrain/internal/clarifai"
	"facebrain/internal/domain/user"
	"facebrain/internal/repository"
	facebrain_errors "facebrain/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		BcryptCost:      4,
		DBTimeout:       time.Second,
		ClarifaiTimeout: time.Second,
	}
}

// flakyRepo fails selected operations with a store error.
type flakyRepo struct {
	*repository.MemoryUserRepository
	failCredential bool
	failUserEmail  bool
	missingUser    bool
	failUserID     bool
	failIncrement  bool
	failRegister   bool
}

func newFlakyRepo() *flakyRepo {
	return &flakyRepo{MemoryUserRepository: repository.NewMemoryUserRepository()}
}

var errConnRefused = fmt.Errorf("%w: dial tcp 127.0.0.1:5432: connection refused", facebrain_errors.ErrStore)

func (r *flakyRepo) Register(ctx context.Context, u *user.User, hash string) error {
	if r.failRegister {
		return errConnRefused
	}
	return r.MemoryUserRepository.Register(ctx, u, hash)
}

func (r *flakyRepo) GetCredentialByEmail(ctx context.Context, email string) (user.Credential, error) {
	if r.failCredential {
		return user.Credential{}, errConnRefused
	}
	return r.MemoryUserRepository.GetCredentialByEmail(ctx, email)
}

func (r *flakyRepo) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if r.failUserEmail {
		return user.User{}, errConnRefused
	}
	if r.missingUser {
		return user.User{}, facebrain_errors.ErrNotFound
	}
	return r.MemoryUserRepository.GetUserByEmail(ctx, email)
}

func (r *flakyRepo) GetUserByID(ctx context.Context, id int64) (user.User, error) {
	if r.failUserID {
		return user.User{}, errConnRefused
	}
	return r.MemoryUserRepository.GetUserByID(ctx, id)
}

func (r *flakyRepo) IncrementEntries(ctx context.Context, id int64) (user.User, error) {
	if r.failIncrement {
		return user.User{}, errConnRefused
	}
	return r.MemoryUserRepository.IncrementEntries(ctx, id)
}

// stubDetector answers with a fixed number of regions per image URL.
type stubDetector struct {
	mu      sync.Mutex
	regions map[string]int
	err     error
	calls   int
}

func (d *stubDetector) DetectFaces(ctx context.Context, imageURL string) (*clarifai.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	n := d.regions[imageURL]
	return &clarifai.Result{
		Status:  clarifai.Status{Code: clarifai.StatusSuccess},
		Regions: n,
		Raw:     []byte(fmt.Sprintf(`{"status":{"code":10000},"regions":%d}`, n)),
	}, nil
}

type memoryCache struct {
	mu        sync.Mutex
	users     map[int64]user.User
	updates   []int64
	failReads bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{users: make(map[int64]user.User)}
}

func (c *memoryCache) GetUser(ctx context.Context, id int64) (*user.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failReads {
		return nil, fmt.Errorf("redis: connection pool timeout")
	}
	u, ok := c.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (c *memoryCache) FillUser(ctx context.Context, u user.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.users[u.ID]; !ok {
		c.users[u.ID] = u
	}
	return nil
}

func (c *memoryCache) UpdateUser(ctx context.Context, u user.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, u.ID)
	if cached, ok := c.users[u.ID]; ok && cached.Entries >= u.Entries {
		return nil
	}
	c.users[u.ID] = u
	return nil
}
