package commands

import (
	"context"
	"fmt"

	"github.com/wonny/capexwatch/internal/brain"
	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/dataset"
	"github.com/wonny/capexwatch/internal/metrics"
	"github.com/wonny/capexwatch/internal/modelconfig"
	"github.com/wonny/capexwatch/internal/store"
	"github.com/wonny/capexwatch/pkg/config"
	"github.com/wonny/capexwatch/pkg/database"
	"github.com/wonny/capexwatch/pkg/logger"
	"github.com/wonny/capexwatch/pkg/redis"
)

// app wires runtime config, model config, storage and the orchestrator
type app struct {
	cfg          *config.Config
	model        *modelconfig.Config
	log          *logger.Logger
	db           *database.DB
	redis        *redis.Client
	store        contracts.ArtifactStore
	metrics      *metrics.Metrics
	orchestrator *brain.Orchestrator
}

type bootstrapOptions struct {
	// inMemory skips the configured backend (ad-hoc simulations)
	inMemory bool
}

// loadConfig reads the environment and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if modelConfigPath != "" {
		cfg.ModelConfigPath = modelConfigPath
	}
	if datasetPath != "" {
		cfg.DatasetPath = datasetPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func bootstrap(ctx context.Context, opts bootstrapOptions) (*app, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load model config
	model, err := modelconfig.LoadOrDefault(cfg.ModelConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load model config: %w", err)
	}
	for _, w := range modelconfig.Warn(model) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	a := &app{cfg: cfg, model: model, log: log}
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	// 4. Artifact store
	if opts.inMemory {
		a.store = store.NewMemoryStore()
	} else {
		if cfg.Artifacts.Backend == "postgres" {
			a.db, err = database.New(ctx, cfg)
			if err != nil {
				return nil, fmt.Errorf("connect to database: %w", err)
			}
			log.Info("Connected to database")
		}
		a.redis, err = redis.New(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.store, err = store.Open(ctx, cfg, a.db, a.redis, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open artifact store: %w", err)
		}
	}

	// 5. Orchestrator
	source := dataset.FileSource{Path: cfg.DatasetPath}
	a.orchestrator, err = brain.NewOrchestrator(model, source, a.store, a.metrics, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"model":   model.Meta.ModelID,
		"version": model.Meta.Version,
		"dataset": cfg.DatasetPath,
		"backend": cfg.Artifacts.Backend,
	}).Debug("Application initialized")

	return a, nil
}

// Close releases database and redis connections
func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
