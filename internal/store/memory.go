package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/capexwatch/internal/contracts"
)

// MemoryStore is an in-process ArtifactStore for one-shot CLI runs and tests
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string][]byte
	latest    string
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{artifacts: make(map[string][]byte)}
}

func memKey(runID string, kind contracts.ArtifactKind) string {
	return runID + "/" + string(kind)
}

// Save stores a copy of payload
func (s *MemoryStore) Save(_ context.Context, runID string, kind contracts.ArtifactKind, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[memKey(runID, kind)] = append([]byte(nil), payload...)
	return nil
}

// Load returns a copy of the stored payload
func (s *MemoryStore) Load(_ context.Context, runID string, kind contracts.ArtifactKind) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.artifacts[memKey(runID, kind)]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", runID, kind, contracts.ErrArtifactNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Latest returns the last run passed to MarkLatest
func (s *MemoryStore) Latest(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == "" {
		return "", fmt.Errorf("latest run: %w", contracts.ErrArtifactNotFound)
	}
	return s.latest, nil
}

// MarkLatest records runID as latest
func (s *MemoryStore) MarkLatest(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = runID
	return nil
}
