package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source provides the raw identifier to record mapping. The format and
// location are owned by the extraction pipeline that produced it.
type Source interface {
	Name() string
	Records(ctx context.Context) (map[string]json.RawMessage, error)
}

// Format names a Source implementation.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// SourceFor returns the Source for path. An empty format is inferred from the
// file extension.
func SourceFor(format Format, path string) (Source, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			format = FormatJSON
		case ".yaml", ".yml":
			format = FormatYAML
		case ".db", ".sqlite", ".sqlite3":
			format = FormatSQLite
		}
	}
	switch format {
	case FormatJSON:
		return JSONFileSource{Path: path}, nil
	case FormatYAML:
		return YAMLFileSource{Path: path}, nil
	case FormatSQLite:
		return SQLiteSource{Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: %q for %s", ErrUnknownFormat, format, path)
	}
}

// JSONFileSource reads a JSON object keyed by identifier, the shape emitted
// by react-docgen style extractors.
type JSONFileSource struct {
	Path string
}

func (s JSONFileSource) Name() string { return s.Path }

func (s JSONFileSource) Records(ctx context.Context) (map[string]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	if out == nil {
		out = map[string]json.RawMessage{}
	}
	return out, nil
}

// YAMLFileSource reads the same mapping written as YAML. Records are
// converted to JSON so the rest of the system sees one encoding.
type YAMLFileSource struct {
	Path string
}

func (s YAMLFileSource) Name() string { return s.Path }

func (s YAMLFileSource) Records(ctx context.Context) (map[string]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	out := make(map[string]json.RawMessage, len(doc))
	for key, value := range doc {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("record %q in %s: %w", key, s.Path, err)
		}
		out[key] = encoded
	}
	return out, nil
}
