package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyPage       = "page"
	KeyIdentifier = "identifier"
	KeyComponent  = "component"
	KeyBlockKind  = "block_kind"
	KeySourcePath = "source_path"
	KeyMetadata   = "metadata_source"
	KeyOutput     = "output"
	KeyBlocks     = "blocks"
	KeyMissing    = "missing_metadata"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func Page(name string) slog.Attr        { return slog.String(KeyPage, name) }
func Identifier(id string) slog.Attr    { return slog.String(KeyIdentifier, id) }
func Component(name string) slog.Attr   { return slog.String(KeyComponent, name) }
func BlockKind(kind string) slog.Attr   { return slog.String(KeyBlockKind, kind) }
func SourcePath(path string) slog.Attr  { return slog.String(KeySourcePath, path) }
func MetadataSource(s string) slog.Attr { return slog.String(KeyMetadata, s) }
func Output(path string) slog.Attr      { return slog.String(KeyOutput, path) }
func Blocks(n int) slog.Attr            { return slog.Int(KeyBlocks, n) }
func Missing(n int) slog.Attr           { return slog.Int(KeyMissing, n) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
