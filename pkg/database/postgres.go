package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"facebrain/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const driverName = "pgx"

// DSN builds the Postgres connection string for cfg.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
}

// Connect opens the pool and verifies it with a ping.
func Connect(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(driverName, DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Connection pool settings
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(100)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// HealthCheck pings the database within the given timeout.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// MigrationFiles lists the migration files in dir with the given suffix
// (".up.sql" or ".down.sql"), in apply order.
func MigrationFiles(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	if suffix == ".down.sql" {
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	}
	return files, nil
}

// ApplyMigrations executes every *.up.sql file in dir in lexical order.
func ApplyMigrations(ctx context.Context, db *sql.DB, dir string) ([]string, error) {
	return execFiles(ctx, db, dir, ".up.sql")
}

// RollbackMigrations executes every *.down.sql file in dir in reverse lexical order.
func RollbackMigrations(ctx context.Context, db *sql.DB, dir string) ([]string, error) {
	return execFiles(ctx, db, dir, ".down.sql")
}

func execFiles(ctx context.Context, db *sql.DB, dir, suffix string) ([]string, error) {
	files, err := MigrationFiles(dir, suffix)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration file %s: %w", filepath.Base(path), err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return applied, fmt.Errorf("failed to execute migration %s: %w", filepath.Base(path), err)
		}
		applied = append(applied, filepath.Base(path))
	}
	return applied, nil
}

// TableExists reports whether a table with the given name exists in the public schema.
func TableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)`,
		table,
	).Scan(&exists)
	return exists, err
}

// TableCount returns the number of rows in one of the known tables.
func TableCount(ctx context.Context, db *sql.DB, table string) (int64, error) {
	switch table {
	case "users", "login":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var count int64
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
	return count, err
}
