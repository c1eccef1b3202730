package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"facebrain/internal/domain/user"
	"facebrain/internal/repository"
	facebrain_errors "facebrain/pkg/errors"

	"golang.org/x/crypto/bcrypt"
)

// SeedConfig holds the demo account created by SeedDemoUser.
type SeedConfig struct {
	Email      string
	Name       string
	Password   string
	BcryptCost int
}

// SeedDemoUser creates the demo account, or returns it unchanged if the email is taken.
func SeedDemoUser(ctx context.Context, db *sql.DB, cfg SeedConfig) (user.User, error) {
	return seedUser(ctx, repository.NewUserRepository(db), cfg)
}

func seedUser(ctx context.Context, repo repository.UserRepository, cfg SeedConfig) (user.User, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" || cfg.Name == "" || cfg.Password == "" {
		return user.User{}, fmt.Errorf("%w: email, name and password are required", facebrain_errors.ErrInvalidInput)
	}

	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), cost)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to hash seed password: %w", err)
	}

	u := &user.User{Name: cfg.Name, Email: email}
	if err := repo.Register(ctx, u, string(hash)); err != nil {
		if errors.Is(err, facebrain_errors.ErrAlreadyExists) {
			return repo.GetUserByEmail(ctx, email)
		}
		return user.User{}, fmt.Errorf("failed to seed user: %w", err)
	}
	return *u, nil
}
