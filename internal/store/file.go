package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/capexwatch/internal/contracts"
)

const latestFile = "LATEST"

// FileStore keeps one JSON document per artifact under <dir>/<run_id>/<kind>.json
type FileStore struct {
	dir string
}

// NewFileStore creates the artifact directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the artifact root
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes the artifact atomically (temp file + rename)
func (s *FileStore) Save(ctx context.Context, runID string, kind contracts.ArtifactKind, payload []byte) error {
	if err := validKey(runID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	runDir := filepath.Join(s.dir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	return writeAtomic(filepath.Join(runDir, string(kind)+".json"), payload)
}

// Load reads an artifact; unknown keys return contracts.ErrArtifactNotFound
func (s *FileStore) Load(ctx context.Context, runID string, kind contracts.ArtifactKind) ([]byte, error) {
	if err := validKey(runID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, runID, string(kind)+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", runID, kind, contracts.ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact %s/%s: %w", runID, kind, err)
	}
	return data, nil
}

// Latest returns the most recently completed run id
func (s *FileStore) Latest(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, latestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("latest run: %w", contracts.ErrArtifactNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read latest run: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// MarkLatest points LATEST at runID
func (s *FileStore) MarkLatest(ctx context.Context, runID string) error {
	if err := validKey(runID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.dir, latestFile), []byte(runID+"\n"))
}

func writeAtomic(path string, payload []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// validKey rejects run ids that would escape the artifact root
func validKey(runID string) error {
	if runID == "" || runID == "." || runID == ".." || strings.ContainsAny(runID, `/\`) {
		return &contracts.InvalidParameterError{Param: "run_id", Value: runID, Reason: "must be a plain identifier"}
	}
	return nil
}
