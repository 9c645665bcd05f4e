package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"trustlens/adapters/analysis/aggregate"
	"trustlens/adapters/analysis/crossval"
	"trustlens/adapters/analysis/hashchain"
	"trustlens/adapters/detect"
	"trustlens/adapters/postgres"
	"trustlens/app"
	"trustlens/domain/verdict"
	"trustlens/internal/api"
	"trustlens/internal/config"
	"trustlens/internal/migration"
	"trustlens/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	EvidenceRepo *postgres.EvidenceRepository
	Checkpoints  *postgres.CheckpointStore

	// Engine components
	Runner     *detect.Runner
	Detectors  []ports.Detector
	Classifier *verdict.Classifier
	Aggregator *aggregate.Aggregator
	Validator  *crossval.Validator
	Chain      *hashchain.Verifier

	// Application layer
	Service *app.EvidenceService
	Server  *api.Server
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{Config: cfg}, nil
}

// InitWithDatabase initializes components that require database access and
// wires the full engine.
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.EvidenceRepo = postgres.NewEvidenceRepository(db)
	c.Checkpoints = postgres.NewCheckpointStore(db)

	c.initEngine()

	c.Service = app.NewEvidenceService(
		c.Runner,
		c.Detectors,
		c.Aggregator,
		c.Validator,
		c.Chain,
		nil, // attestation arrives pre-verified with each request
		c.EvidenceRepo,
	)
	c.Server = api.NewServer(c.Service, c.EvidenceRepo)

	return nil
}

// initEngine builds the pure-computation components from configuration.
func (c *Container) initEngine() {
	engineCfg := c.Config.Engine

	aggCfg := aggregate.DefaultConfig()
	aggCfg.DisagreementThreshold = engineCfg.DisagreementThreshold
	aggCfg.PenaltyCutoff = engineCfg.PenaltyCutoff
	aggCfg.AgreementBoost = engineCfg.AgreementBoost

	c.Runner = detect.NewRunner(detect.Config{
		MethodTimeout: engineCfg.DetectorTimeout,
		MaxConcurrent: engineCfg.MaxConcurrentDetectors,
	})
	c.Classifier = verdict.NewClassifier(verdict.DefaultConfig())
	c.Aggregator = aggregate.New(aggCfg, c.Classifier)
	c.Validator = crossval.New(crossval.DefaultConfig())
	c.Chain = hashchain.New(c.Checkpoints)
}

// Close releases held resources.
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
