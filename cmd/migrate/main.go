// migrate applies the schema migrations in order. Safe to re-run: applied
// versions are tracked in schema_migrations.
// Run: go run ./cmd/migrate
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/abakirov/storefront/internal/infrastructure/postgres"
)

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    int PRIMARY KEY,
			applied_at timestamptz NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		log.Fatalf("ensure schema_migrations: %v", err)
	}

	var applied int
	for i, stmt := range migrations {
		version := i + 1

		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
		).Scan(&exists)
		if err != nil {
			log.Fatalf("check migration %d: %v", version, err)
		}
		if exists {
			continue
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			log.Fatalf("begin migration %d: %v", version, err)
		}
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			log.Fatalf("apply migration %d: %v", version, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			_ = tx.Rollback(ctx)
			log.Fatalf("record migration %d: %v", version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			log.Fatalf("commit migration %d: %v", version, err)
		}
		applied++
	}

	fmt.Printf("migrations complete: %d applied, %d total\n", applied, len(migrations))
}
