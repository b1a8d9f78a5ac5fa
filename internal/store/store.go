package store

import (
	"context"
	"fmt"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/pkg/config"
	"github.com/wonny/capexwatch/pkg/database"
	"github.com/wonny/capexwatch/pkg/logger"
	"github.com/wonny/capexwatch/pkg/redis"
)

// cachePrefix namespaces every cache key of this service
const cachePrefix = "capexwatch"

// Open builds the configured artifact store.
// db is required for the postgres backend; rc may be nil or disabled.
func Open(ctx context.Context, cfg *config.Config, db *database.DB, rc *redis.Client, log *logger.Logger) (contracts.ArtifactStore, error) {
	var base contracts.ArtifactStore
	switch cfg.Artifacts.Backend {
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres artifact backend requires a database connection")
		}
		pg := NewPostgresStore(db.Pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		base = pg
	case "file", "":
		fs, err := NewFileStore(cfg.Artifacts.Dir)
		if err != nil {
			return nil, err
		}
		base = fs
	default:
		return nil, &contracts.ConfigurationError{Field: "ARTIFACT_BACKEND", Message: "unknown backend " + cfg.Artifacts.Backend}
	}

	if rc == nil || !rc.Enabled() {
		log.WithField("backend", cfg.Artifacts.Backend).Info("Artifact store ready")
		return base, nil
	}

	log.WithFields(map[string]interface{}{
		"backend": cfg.Artifacts.Backend,
		"ttl":     cfg.Redis.TTL.String(),
	}).Info("Artifact store ready with redis cache")
	return NewCachedStore(base, redis.NewCache(rc, cachePrefix), cfg.Redis.TTL, log), nil
}
