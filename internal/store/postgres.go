package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/capexwatch/internal/contracts"
)

// PostgresStore archives artifacts as jsonb rows keyed by (run_id, kind)
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore instance
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the artifact tables if they do not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS artifacts (
			run_id     TEXT        NOT NULL,
			kind       TEXT        NOT NULL,
			payload    JSONB       NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (run_id, kind)
		);
		CREATE TABLE IF NOT EXISTS artifact_latest (
			id         SMALLINT    PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			run_id     TEXT        NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create artifact schema: %w", err)
	}
	return nil
}

// Save upserts one artifact
func (s *PostgresStore) Save(ctx context.Context, runID string, kind contracts.ArtifactKind, payload []byte) error {
	query := `
		INSERT INTO artifacts (run_id, kind, payload, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (run_id, kind) DO UPDATE SET
			payload = EXCLUDED.payload,
			created_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, runID, string(kind), payload); err != nil {
		return fmt.Errorf("insert artifact %s/%s: %w", runID, kind, err)
	}
	return nil
}

// Load returns the payload of one artifact
func (s *PostgresStore) Load(ctx context.Context, runID string, kind contracts.ArtifactKind) ([]byte, error) {
	query := `SELECT payload FROM artifacts WHERE run_id = $1 AND kind = $2`

	var payload []byte
	err := s.db.QueryRow(ctx, query, runID, string(kind)).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", runID, kind, contracts.ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query artifact %s/%s: %w", runID, kind, err)
	}
	return payload, nil
}

// Latest returns the most recently completed run id
func (s *PostgresStore) Latest(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRow(ctx, `SELECT run_id FROM artifact_latest WHERE id = 1`).Scan(&runID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("latest run: %w", contracts.ErrArtifactNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query latest run: %w", err)
	}
	return runID, nil
}

// MarkLatest records runID as the latest completed run
func (s *PostgresStore) MarkLatest(ctx context.Context, runID string) error {
	query := `
		INSERT INTO artifact_latest (id, run_id, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			updated_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, runID); err != nil {
		return fmt.Errorf("mark latest run: %w", err)
	}
	return nil
}
