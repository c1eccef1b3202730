package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"facebrain/config"
	"facebrain/pkg/database"
)

const usage = `
Facebrain - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run all *.up.sql migrations
  down        Run all *.down.sql migrations in reverse order
  status      Show database connection status and table row counts
  seed        Create a demo account

Flags:
  -migrations string   Path to migrations directory (default "migrations")
  -email string        Demo account email for seeding (default "demo@facebrain.dev")
  -name string         Demo account name for seeding (default "Demo")
  -password string     Demo account password for seeding (default "demo1234")

Examples:
  go run ./cmd/migrate up
  go run ./cmd/migrate status
  go run ./cmd/migrate seed -email me@example.com -password hunter22
`

func main() {
	migrationsDir := flag.String("migrations", "migrations", "Path to migrations directory")
	seedEmail := flag.String("email", "demo@facebrain.dev", "Demo account email for seeding")
	seedName := flag.String("name", "Demo", "Demo account name for seeding")
	seedPassword := flag.String("password", "demo1234", "Demo account password for seeding")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	ctx := context.Background()

	cfg := config.LoadConfig()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		applied, err := database.ApplyMigrations(ctx, db, *migrationsDir)
		for _, name := range applied {
			log.Printf("Applied migration: %s", name)
		}
		if err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	case "down":
		applied, err := database.RollbackMigrations(ctx, db, *migrationsDir)
		for _, name := range applied {
			log.Printf("Rolled back: %s", name)
		}
		if err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		log.Println("Rollback completed successfully")
	case "status":
		showStatus(ctx, cfg, db)
	case "seed":
		u, err := database.SeedDemoUser(ctx, db, database.SeedConfig{
			Email:      *seedEmail,
			Name:       *seedName,
			Password:   *seedPassword,
			BcryptCost: cfg.BcryptCost,
		})
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Printf("Demo user ready: %s (ID: %d)", u.Email, u.ID)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func showStatus(ctx context.Context, cfg *config.Config, db *sql.DB) {
	if err := database.HealthCheck(ctx, db, cfg.DBTimeout); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	for _, table := range []string{"users", "login"} {
		exists, err := database.TableExists(ctx, db, table)
		if err != nil {
			log.Printf("Error checking table %s: %v", table, err)
			continue
		}
		if !exists {
			log.Printf("Table %-10s does not exist", table)
			continue
		}
		count, _ := database.TableCount(ctx, db, table)
		log.Printf("Table %-10s exists (%d rows)", table, count)
	}
}
