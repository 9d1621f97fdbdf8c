package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/OldStager01/housing-valuator/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

const (
	ensureLedgerSQL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		filename   TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	isAppliedSQL = `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)`
	markSQL      = `INSERT INTO schema_migrations (filename) VALUES ($1)`
)

// Migrator brings the schema up to date from the embedded migrations.
// Each file runs in its own transaction together with its ledger row, so a
// failed file leaves no trace and is retried on the next run.
type Migrator struct {
	db  *DB
	log logrus.FieldLogger
}

func NewMigrator(db *DB) *Migrator {
	return &Migrator{db: db, log: logger.Named("migrator")}
}

func (m *Migrator) Run(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, ensureLedgerSQL); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	names, err := MigrationFiles()
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	applied := 0
	for _, name := range names {
		var done bool
		if err := m.db.QueryRowContext(ctx, isAppliedSQL, name).Scan(&done); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if done {
			continue
		}
		if err := m.apply(ctx, name); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
		applied++
	}

	m.log.WithField("applied", applied).Info("Schema up to date")
	return nil
}

// MigrationFiles lists the embedded migrations in the order Run applies them.
func MigrationFiles() ([]string, error) {
	names, err := fs.Glob(migrationsFS, path.Join(migrationsDir, "*.sql"))
	if err != nil {
		return nil, err
	}
	for i, n := range names {
		names[i] = path.Base(n)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Migrator) apply(ctx context.Context, name string) error {
	body, err := fs.ReadFile(migrationsFS, path.Join(migrationsDir, name))
	if err != nil {
		return err
	}

	m.log.WithField("file", name).Info("Applying migration")
	return m.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, markSQL, name)
		return err
	})
}
