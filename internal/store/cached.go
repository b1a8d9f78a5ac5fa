package store

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/pkg/logger"
	"github.com/wonny/capexwatch/pkg/redis"
)

// CachedStore reads through Redis in front of any ArtifactStore.
// Redis failures never fail a call: the breaker opens after three consecutive
// errors and the inner store serves alone until it half-opens.
type CachedStore struct {
	inner   contracts.ArtifactStore
	cache   *redis.Cache
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
}

// NewCachedStore wraps inner with a Redis cache
func NewCachedStore(inner contracts.ArtifactStore, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedStore {
	st := gobreaker.Settings{
		Name:     "artifact-cache",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Cache circuit breaker state changed")
		},
	}
	return &CachedStore{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		breaker: gobreaker.NewCircuitBreaker(st),
		log:     log.WithComponent("artifact_cache"),
	}
}

// BreakerState reports the cache breaker state
func (s *CachedStore) BreakerState() string {
	return s.breaker.State().String()
}

// Save writes through to the inner store, then refreshes the cache
func (s *CachedStore) Save(ctx context.Context, runID string, kind contracts.ArtifactKind, payload []byte) error {
	if err := s.inner.Save(ctx, runID, kind, payload); err != nil {
		return err
	}
	s.set(ctx, redis.ArtifactKey(runID, string(kind)), payload)
	return nil
}

// Load serves from the cache when possible
func (s *CachedStore) Load(ctx context.Context, runID string, kind contracts.ArtifactKind) ([]byte, error) {
	key := redis.ArtifactKey(runID, string(kind))
	if data, ok := s.get(ctx, key); ok {
		return data, nil
	}

	data, err := s.inner.Load(ctx, runID, kind)
	if err != nil {
		return nil, err
	}
	s.set(ctx, key, data)
	return data, nil
}

// Latest serves the latest run id from the cache when possible
func (s *CachedStore) Latest(ctx context.Context) (string, error) {
	if data, ok := s.get(ctx, redis.LatestRunKey); ok {
		return string(data), nil
	}

	runID, err := s.inner.Latest(ctx)
	if err != nil {
		return "", err
	}
	s.set(ctx, redis.LatestRunKey, []byte(runID))
	return runID, nil
}

// MarkLatest updates the inner store and the cached pointer
func (s *CachedStore) MarkLatest(ctx context.Context, runID string) error {
	if err := s.inner.MarkLatest(ctx, runID); err != nil {
		return err
	}
	// latest pointer never expires on its own
	s.setTTL(ctx, redis.LatestRunKey, []byte(runID), 0)
	return nil
}

func (s *CachedStore) get(ctx context.Context, key string) ([]byte, bool) {
	type hit struct {
		data  []byte
		found bool
	}
	res, err := s.breaker.Execute(func() (interface{}, error) {
		data, found, err := s.cache.Get(ctx, key)
		return hit{data, found}, err
	})
	if err != nil {
		s.logCacheError("get", key, err)
		return nil, false
	}
	h := res.(hit)
	return h.data, h.found
}

func (s *CachedStore) set(ctx context.Context, key string, payload []byte) {
	s.setTTL(ctx, key, payload, s.ttl)
}

func (s *CachedStore) setTTL(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.cache.Set(ctx, key, payload, ttl)
	})
	if err != nil {
		s.logCacheError("set", key, err)
	}
}

func (s *CachedStore) logCacheError(op, key string, err error) {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		s.log.WithField("key", key).Debug("Cache bypassed: breaker open")
		return
	}
	s.log.WithError(err).WithFields(map[string]interface{}{
		"op":  op,
		"key": key,
	}).Warn("Cache operation failed")
}
