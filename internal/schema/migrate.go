// Package schema manages the demo (nodes, edges) table pair used by
// integration tests and local development, via goose
// (github.com/pressly/goose/v3).
//
// Choice rationale: goose was kept for this project because it needs no
// separate source/database driver split, up/down migrations live in one
// file (-- +goose Up / -- +goose Down), and it embeds cleanly via embed.FS.
//
// Migration files live in internal/schema/migrations/ and are embedded via
// //go:embed. RunMigrations applies all pending migrations; the engine
// itself is schema-agnostic and works against whatever (nodes_table,
// edges_table) pair a caller's SchemaRef names, so this migration set only
// needs to stand up a representative demo schema.
package schema

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/relgraph/graphengine/internal/dbpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies all pending migrations to the demo schema.
func RunMigrations(ctx context.Context, pool *dbpool.Pool, log *logrus.Logger) error {
	connStr := pool.ConnString()

	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("opening sql.DB for migrations: %w", err)
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrationsFS)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	for _, r := range results {
		if r.Error != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", r.Source.Version, r.Source.Path, r.Error)
		}

		log.WithFields(logrus.Fields{
			"version":  r.Source.Version,
			"file":     r.Source.Path,
			"duration": r.Duration,
		}).Info("migration applied")
	}

	if len(results) == 0 {
		log.Debug("all migrations already applied")
	}

	return nil
}
