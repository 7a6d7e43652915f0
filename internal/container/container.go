package container

import (
	"context"
	"fmt"

	"vaeval/adapters/excel"
	"vaeval/adapters/postgres"
	"vaeval/adapters/rng"
	"vaeval/app"
	"vaeval/internal"
	"vaeval/internal/config"
	"vaeval/internal/errors"
	"vaeval/internal/migration"
	"vaeval/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Adapters
	Archive ports.ResultArchive
	RNG     ports.RNGPort
}

// New creates a new dependency injection container. File-backed archives
// are ready immediately; the postgres archive needs InitWithDatabase.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(cfg.Log.Level),
		RNG:    rng.NewStreamAdapter(),
	}

	switch cfg.Output.Format {
	case config.FormatCSV:
		c.Archive = excel.NewCSVStore(cfg.Output.Dir)
	case config.FormatWorkbook:
		c.Archive = excel.NewWorkbookStore(cfg.Output.Dir)
	case config.FormatPostgres:
		// set by InitWithDatabase
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported output format %q", cfg.Output.Format))
	}
	return c, nil
}

// InitWithDatabase migrates the schema and switches the archive to postgres
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	// Test database connection
	if err := db.PingContext(ctx); err != nil {
		return errors.DatabaseError("failed to ping database", err)
	}
	if err := migration.NewRunner(c.Logger).Run(ctx, db); err != nil {
		return err
	}

	c.Archive = postgres.NewResultRepository(db)
	c.Logger.Info("[Container] initialized with database connection")
	return nil
}

// Connect opens the configured database when the output format needs one
func (c *Container) Connect(ctx context.Context) error {
	if c.Config.Output.Format != config.FormatPostgres {
		return nil
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	return c.InitWithDatabase(ctx, db)
}

// ValidationService builds the validation service over reader
func (c *Container) ValidationService(reader ports.DatasetReader) *app.ValidationService {
	return app.NewValidationService(reader, c.Archive, c.RNG, c.Logger).
		WithSummary(c.Config.Summary.Bootstraps, c.Config.Summary.Seed)
}

// ResultsService builds the combine and summary service
func (c *Container) ResultsService() *app.ResultsService {
	return app.NewResultsService(c.Archive, c.Logger).
		WithSummary(c.Config.Summary.Bootstraps, c.Config.Summary.Seed)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
