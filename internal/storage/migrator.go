package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// MigrationState is one catalog schema migration as seen by the database.
type MigrationState struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

func migrationSources() (fs.FS, error) {
	return fs.Sub(migrationsFS, migrationsDir)
}

func newMigrationProvider(db *sql.DB) (*goose.Provider, error) {
	sources, err := migrationSources()
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(goose.DialectPostgres, db, sources)
}

// RunMigrations applies every pending catalog migration.
func RunMigrations(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	const operation = "storage.RunMigrations"

	provider, err := newMigrationProvider(db)
	if err != nil {
		return fmt.Errorf("%s: failed to load migrations: %w", operation, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", operation, err)
	}

	for _, r := range results {
		logger.Info("Applied catalog migration",
			zap.Int64("version", r.Source.Version),
			zap.Duration("took", r.Duration))
	}
	logger.Info("Catalog schema up to date", zap.Int("applied", len(results)))
	return nil
}

// RollbackMigration reverts the most recent catalog migration. Nothing to revert is not an error.
func RollbackMigration(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	const operation = "storage.RollbackMigration"

	provider, err := newMigrationProvider(db)
	if err != nil {
		return fmt.Errorf("%s: failed to load migrations: %w", operation, err)
	}

	result, err := provider.Down(ctx)
	if errors.Is(err, goose.ErrNoNextVersion) {
		logger.Info("No catalog migration to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: failed to rollback migration: %w", operation, err)
	}

	logger.Info("Rolled back catalog migration", zap.Int64("version", result.Source.Version))
	return nil
}

// Status lists every known catalog migration in version order.
func Status(ctx context.Context, db *sql.DB) ([]MigrationState, error) {
	const operation = "storage.Status"

	provider, err := newMigrationProvider(db)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load migrations: %w", operation, err)
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to check migration status: %w", operation, err)
	}

	out := make([]MigrationState, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationState{
			Version:   s.Source.Version,
			Path:      s.Source.Path,
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		})
	}
	return out, nil
}
