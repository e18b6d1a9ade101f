// Package manifest records what went into and came out of a page build.
//
// A manifest is written next to every assembled page. Its input hash lets the
// build command skip pages whose definition, sources and metadata are unchanged.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Status values for BuildManifest.Status.
const (
	StatusSuccess  = "success"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)

// BuildManifest is the record of one page build.
type BuildManifest struct {
	ID        string    `json:"id"`
	Page      string    `json:"page"`
	Timestamp time.Time `json:"timestamp"`
	Inputs    Inputs    `json:"inputs"`
	Outputs   Outputs   `json:"outputs"`
	Status    string    `json:"status"`
	Duration  int64     `json:"duration_ms"`
}

// Inputs captures everything the page content depends on.
type Inputs struct {
	Definition     string        `json:"definition"`
	DefinitionHash string        `json:"definition_hash"`
	Metadata       MetadataInput `json:"metadata"`
	Sources        []SourceInput `json:"sources"`
	Revision       string        `json:"revision,omitempty"`
	ToolVersion    string        `json:"tool_version,omitempty"`
}

// MetadataInput identifies the metadata store a build read.
type MetadataInput struct {
	Source  string `json:"source"`
	Digest  string `json:"digest"`
	Records int    `json:"records"`
}

// SourceInput is one example or Markdown file read by the build.
type SourceInput struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// Outputs captures the written page.
type Outputs struct {
	Path            string         `json:"path,omitempty"`
	Fingerprint     string         `json:"fingerprint,omitempty"`
	Blocks          map[string]int `json:"blocks,omitempty"`
	MissingMetadata []string       `json:"missing_metadata,omitempty"`
}

// New starts a manifest for page with a fresh build ID.
func New(page string) *BuildManifest {
	return &BuildManifest{
		ID:        uuid.NewString(),
		Page:      page,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// ReadFile loads a manifest written by a previous build.
func ReadFile(path string) (*BuildManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}

// Hash computes a deterministic hash of the manifest's inputs. Two builds with
// the same hash produce the same page.
func (m *BuildManifest) Hash() (string, error) {
	sources := make([]SourceInput, len(m.Inputs.Sources))
	copy(sources, m.Inputs.Sources)
	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })

	hashInput := struct {
		Page           string        `json:"page"`
		DefinitionHash string        `json:"definition_hash"`
		Metadata       string        `json:"metadata"`
		Sources        []SourceInput `json:"sources"`
		ToolVersion    string        `json:"tool_version"`
	}{
		Page:           m.Page,
		DefinitionHash: m.Inputs.DefinitionHash,
		Metadata:       m.Inputs.Metadata.Digest,
		Sources:        sources,
		ToolVersion:    m.Inputs.ToolVersion,
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// HashBytes is the content hash used for definitions and sources.
func HashBytes(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
