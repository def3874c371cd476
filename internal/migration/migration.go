package migration

import (
	"context"

	"donorviz/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the association schema
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order. Every statement is
// idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createResultsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create association_results table")
	}

	if err := r.createSignificanceTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create association_significance table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// Statements returns the DDL in execution order.
func (r *MigrationRunner) Statements() []string {
	return []string{resultsTableDDL, significanceTableDDL, indexesDDL}
}

const resultsTableDDL = `
		CREATE TABLE IF NOT EXISTS association_results (
			id BIGSERIAL PRIMARY KEY,
			label VARCHAR(32) NOT NULL,
			predictor VARCHAR(64) NOT NULL,
			predictorvalue DOUBLE PRECISION,
			predicted DOUBLE PRECISION,
			lower DOUBLE PRECISION,
			upper DOUBLE PRECISION,
			adjusted BOOLEAN
		)
	`

const significanceTableDDL = `
		CREATE TABLE IF NOT EXISTS association_significance (
			id BIGSERIAL PRIMARY KEY,
			label VARCHAR(32) NOT NULL,
			predictor VARCHAR(64) NOT NULL,
			probf DOUBLE PRECISION,
			fdr_p DOUBLE PRECISION,
			adjusted BOOLEAN
		)
	`

const indexesDDL = `
		CREATE INDEX IF NOT EXISTS idx_association_results_key
			ON association_results (label, predictor, adjusted);
		CREATE INDEX IF NOT EXISTS idx_association_significance_key
			ON association_significance (label, predictor, adjusted);
	`

func (r *MigrationRunner) createResultsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, resultsTableDDL)
	return err
}

func (r *MigrationRunner) createSignificanceTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, significanceTableDDL)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, indexesDDL)
	return err
}
