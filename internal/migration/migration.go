package migration

import (
	"context"

	"vaeval/internal"
	"vaeval/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations. Statements use the
// subset of SQL shared by Postgres and SQLite.
type MigrationRunner struct {
	version string
	logger  *internal.Logger
}

// NewRunner creates a new migration runner
func NewRunner(logger *internal.Logger) *MigrationRunner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &MigrationRunner{
		version: "1.0.0",
		logger:  logger,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	steps := []struct {
		name string
		fn   func(context.Context, *sqlx.DB) error
	}{
		{"validation_runs table", r.createValidationRunsTable},
		{"validation_predictions table", r.createPredictionsTable},
		{"validation_csmf table", r.createCSMFTable},
		{"validation_ccc table", r.createCCCTable},
		{"validation_accuracy table", r.createAccuracyTable},
	}
	for _, step := range steps {
		r.logger.Debug("[Migration] creating %s", step.name)
		if err := step.fn(ctx, db); err != nil {
			return errors.DatabaseError("failed to create "+step.name, err)
		}
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}
	r.logger.Info("[Migration] schema version %s is up to date", r.version)
	return nil
}

func (r *MigrationRunner) createValidationRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS validation_runs (
			id VARCHAR(36) PRIMARY KEY,
			stem TEXT NOT NULL UNIQUE,
			analysis VARCHAR(20) NOT NULL,
			classifier VARCHAR(100) NOT NULL,
			module VARCHAR(50) NOT NULL,
			hce BOOLEAN NOT NULL,
			cause_list TEXT,
			symptoms TEXT,
			subset_start INTEGER,
			subset_stop INTEGER,
			n_splits INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createPredictionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS validation_predictions (
			run_id VARCHAR(36) NOT NULL REFERENCES validation_runs(id),
			position INTEGER NOT NULL,
			observation_id TEXT NOT NULL,
			actual TEXT NOT NULL,
			prediction TEXT NOT NULL,
			split INTEGER NOT NULL,
			PRIMARY KEY (run_id, position)
		)
	`)
	return err
}

func (r *MigrationRunner) createCSMFTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS validation_csmf (
			run_id VARCHAR(36) NOT NULL REFERENCES validation_runs(id),
			position INTEGER NOT NULL,
			cause TEXT NOT NULL,
			actual DOUBLE PRECISION NOT NULL,
			prediction DOUBLE PRECISION NOT NULL,
			split INTEGER NOT NULL,
			PRIMARY KEY (run_id, position)
		)
	`)
	return err
}

// createCCCTable stores the CCC table in long form, one row per split and
// observed cause. A NULL ccc is an undefined value.
func (r *MigrationRunner) createCCCTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS validation_ccc (
			run_id VARCHAR(36) NOT NULL REFERENCES validation_runs(id),
			position INTEGER NOT NULL,
			split INTEGER NOT NULL,
			cause TEXT NOT NULL,
			ccc DOUBLE PRECISION,
			PRIMARY KEY (run_id, position, cause)
		)
	`)
	return err
}

func (r *MigrationRunner) createAccuracyTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS validation_accuracy (
			run_id VARCHAR(36) NOT NULL REFERENCES validation_runs(id),
			position INTEGER NOT NULL,
			mean_ccc DOUBLE PRECISION,
			median_ccc DOUBLE PRECISION,
			csmf_accuracy DOUBLE PRECISION,
			cccsmf_accuracy DOUBLE PRECISION,
			converged INTEGER NOT NULL,
			split INTEGER NOT NULL,
			PRIMARY KEY (run_id, position)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_runs_classifier ON validation_runs(classifier, module)",
		"CREATE INDEX IF NOT EXISTS idx_runs_created_at ON validation_runs(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_predictions_split ON validation_predictions(run_id, split)",
		"CREATE INDEX IF NOT EXISTS idx_ccc_cause ON validation_ccc(cause)",
		"CREATE INDEX IF NOT EXISTS idx_accuracy_split ON validation_accuracy(run_id, split)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Log but don't fail on index creation errors
			r.logger.Warn("[Migration] failed to create index: %v", err)
		}
	}
	return nil
}
