package contracts

import "context"

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// ArtifactStore persists stage outputs keyed by run ID and kind.
// Payloads are canonical JSON; Load returns ErrArtifactNotFound for unknown keys.
type ArtifactStore interface {
	Save(ctx context.Context, runID string, kind ArtifactKind, payload []byte) error
	Load(ctx context.Context, runID string, kind ArtifactKind) ([]byte, error)
	// Latest returns the most recently completed run ID
	Latest(ctx context.Context) (string, error)
	// MarkLatest records runID as the most recently completed run
	MarkLatest(ctx context.Context, runID string) error
}
