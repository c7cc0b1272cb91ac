package main

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/camier/spots/internal/pkg/config"
)

// catalogMigrations run in order; each is applied once and recorded in
// spots_schema_migrations so reruns are no-ops.
var catalogMigrations = []string{
	"migrations/001_init_extensions.sql",
	"migrations/002_core_tables.sql",
}

// downStatements tear the catalog schema back down, newest first. The
// PostGIS and trigram extensions stay installed; other databases on the
// cluster may use them.
var downStatements = []string{
	`DROP TABLE IF EXISTS exposure_digests`,
	`DROP TABLE IF EXISTS spots`,
	`DROP TABLE IF EXISTS spots_schema_migrations`,
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("spots-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		migrateUp(ctx, pool)
	case "down":
		migrateDown(ctx, pool)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool) {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS spots_schema_migrations (
		filename   text PRIMARY KEY,
		applied_at timestamptz NOT NULL DEFAULT now()
	)`)
	if err != nil {
		log.Fatalf("migrations ledger: %v", err)
	}

	applied := 0
	for _, f := range catalogMigrations {
		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM spots_schema_migrations WHERE filename = $1)`, f).Scan(&exists)
		if err != nil {
			log.Fatalf("check %s: %v", f, err)
		}
		if exists {
			log.Printf("SKIP %s (already applied)", f)
			continue
		}

		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}
		if _, err := pool.Exec(ctx,
			`INSERT INTO spots_schema_migrations (filename) VALUES ($1)`, f); err != nil {
			log.Fatalf("record %s: %v", f, err)
		}
		log.Printf("OK   %s", f)
		applied++
	}

	log.Printf("catalog schema up to date (%d applied)", applied)
}

func migrateDown(ctx context.Context, pool *pgxpool.Pool) {
	for _, stmt := range downStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("exec %q: %v", stmt, err)
		}
		log.Printf("OK   %s", stmt)
	}
	log.Println("catalog schema dropped")
}
