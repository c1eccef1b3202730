package repository

import (
	"context"
	"time"

	"facebrain/internal/domain/user"
)

type PostgresUserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, name, email, entries, joined`

func (r *PostgresUserRepository) Register(ctx context.Context, u *user.User, hash string) error {
	if u.Joined.IsZero() {
		u.Joined = time.Now().UTC()
	}
	err := WithTx(ctx, r.db, func(tx DBTX) error {
		row := tx.QueryRowContext(ctx,
			`INSERT INTO users (name, email, joined) VALUES ($1, $2, $3) RETURNING `+userColumns,
			u.Name, u.Email, u.Joined,
		)
		if err := scanUser(row, u); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO login (hash, email) VALUES ($1, $2)`,
			hash, u.Email,
		)
		return err
	})
	return translate(err)
}

func (r *PostgresUserRepository) GetCredentialByEmail(ctx context.Context, email string) (user.Credential, error) {
	var c user.Credential
	err := r.db.QueryRowContext(ctx,
		`SELECT email, hash FROM login WHERE email = $1`, email,
	).Scan(&c.Email, &c.Hash)
	if err != nil {
		return user.Credential{}, translate(err)
	}
	return c, nil
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err := scanUser(row, &u); err != nil {
		return user.User{}, translate(err)
	}
	return u, nil
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err := scanUser(row, &u); err != nil {
		return user.User{}, translate(err)
	}
	return u, nil
}

func (r *PostgresUserRepository) IncrementEntries(ctx context.Context, id int64) (user.User, error) {
	var u user.User
	row := r.db.QueryRowContext(ctx,
		`UPDATE users SET entries = entries + 1 WHERE id = $1 RETURNING `+userColumns, id,
	)
	if err := scanUser(row, &u); err != nil {
		return user.User{}, translate(err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner, u *user.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.Entries, &u.Joined)
}
