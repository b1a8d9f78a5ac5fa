package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Document is the raw indicator file as supplied by upstream collectors.
// A nil value means the indicator was not observed.
type Document struct {
	AsOf      string            `json:"as_of"`
	BaseYear  int               `json:"base_year"`
	Companies []CompanyDocument `json:"companies"`
	Macro     MacroDocument     `json:"macro"`
}

// CompanyDocument is one company's raw indicators (USD billions)
type CompanyDocument struct {
	Ticker     string              `json:"ticker"`
	Name       string              `json:"name"`
	Period     string              `json:"period"`
	Source     string              `json:"source"`
	Indicators map[string]*float64 `json:"indicators"`
}

// MacroDocument is the raw macro/market snapshot
type MacroDocument struct {
	Period     string              `json:"period"`
	Source     string              `json:"source"`
	Indicators map[string]*float64 `json:"indicators"`
}

// Decode parses a document; unknown top-level fields are rejected
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &doc, nil
}

// LoadFile reads and parses a document from disk
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// =============================================================================
// Sources
// =============================================================================

// Source supplies the raw document for a run
type Source interface {
	Fetch(ctx context.Context) (*Document, error)
	Name() string
}

// FileSource reads a JSON document from disk on every fetch
type FileSource struct {
	Path string
}

// Fetch implements Source
func (s FileSource) Fetch(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.Path)
}

// Name implements Source
func (s FileSource) Name() string {
	return "file:" + s.Path
}

// StaticSource serves an in-memory document (API submissions, tests)
type StaticSource struct {
	Doc *Document
}

// Fetch implements Source
func (s StaticSource) Fetch(ctx context.Context) (*Document, error) {
	if s.Doc == nil {
		return &Document{}, nil
	}
	return s.Doc, nil
}

// Name implements Source
func (s StaticSource) Name() string {
	return "static"
}

// Float is a helper for building documents in code
func Float(v float64) *float64 {
	return &v
}
