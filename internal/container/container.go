package container

import (
	"context"
	"fmt"

	"gobandit/adapters/postgres"
	"gobandit/adapters/rewards"
	"gobandit/app"
	"gobandit/internal"
	"gobandit/internal/config"
	"gobandit/internal/errors"
	"gobandit/internal/migration"
	"gobandit/internal/session"
	"gobandit/internal/testkit"
	"gobandit/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure; DB is nil when runs are kept in memory
	DB     *sqlx.DB
	Ledger ports.RunLedger

	// Services
	Rewards   ports.RewardSourcePort
	Evaluator *app.EvaluationService
	Sweeps    *app.SweepService
	Sessions  *session.Manager

	// Synthetic sequences for simulate and demos
	TestKit *testkit.TestKit
}

// New creates a container whose runs live in memory until InitWithDatabase is called
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(cfg.Log.Level)
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		TestKit: testkit.NewTestKit(),
	}
	c.Ledger = c.TestKit.RunLedger()
	c.initServices()
	return c, nil
}

// OpenDatabase connects to Postgres and applies migrations
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.URL)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to connect to database"))
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

// InitWithDatabase switches the run ledger to Postgres
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.Ping(); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "database connection test failed"))
	}

	c.DB = db
	c.Ledger = postgres.NewRunRepository(db)
	c.initServices()

	c.Logger.Info("Container initialized with Postgres run ledger")
	return nil
}

// initServices (re)builds every service over the current ledger
func (c *Container) initServices() {
	c.Rewards = rewards.NewFileReader(c.Logger)
	c.Evaluator = app.NewEvaluationService(c.Ledger, c.Logger)
	c.Sweeps = app.NewSweepService(c.Evaluator, c.Config.Sweep.Workers, c.Logger)
	if c.Sessions == nil {
		c.Sessions = session.NewManager(c.Config.Bandit.MaxSessions, c.Logger)
	}
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
