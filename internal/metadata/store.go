package metadata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"git.home.luguber.info/inful/docpage/internal/logfields"
)

// Store is a read-only mapping from Identifier to Record.
//
// A Store is never mutated after construction; Get is safe for concurrent use
// without locking.
type Store struct {
	records map[Identifier]Record
	source  string
}

// NewStore builds a Store from an in-memory mapping. The map is copied.
func NewStore(records map[Identifier]Record) *Store {
	return &Store{records: maps.Clone(records), source: "memory"}
}

// Load reads every record from src once and returns the resulting Store.
func Load(ctx context.Context, src Source) (*Store, error) {
	start := time.Now()
	raw, err := src.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("load metadata from %s: %w", src.Name(), err)
	}

	records := make(map[Identifier]Record, len(raw))
	origin := make(map[Identifier]string, len(raw))
	for key, data := range raw {
		id, err := ParseIdentifier(key)
		if err != nil {
			return nil, fmt.Errorf("load metadata from %s: %w", src.Name(), err)
		}
		if prev, dup := origin[id]; dup {
			return nil, fmt.Errorf("load metadata from %s: %w: %q and %q both normalize to %q",
				src.Name(), ErrDuplicateIdentifier, prev, key, id)
		}
		rec, err := NewRecord(data)
		if err != nil {
			return nil, fmt.Errorf("load metadata from %s: record %q: %w", src.Name(), key, err)
		}
		records[id] = rec
		origin[id] = key
	}

	slog.Debug("Metadata loaded",
		logfields.MetadataSource(src.Name()),
		slog.Int("records", len(records)),
		logfields.Duration(time.Since(start)))

	return &Store{records: records, source: src.Name()}, nil
}

// Get returns the record stored for id. The boolean is false when the store
// has no record for id; that is an expected state, not an error.
func (s *Store) Get(id Identifier) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	rec, ok := s.records[id]
	return rec, ok
}

// Lookup parses raw and calls Get. Unparsable identifiers are reported absent.
func (s *Store) Lookup(raw string) (Record, bool) {
	id, err := ParseIdentifier(raw)
	if err != nil {
		return Record{}, false
	}
	return s.Get(id)
}

// Len returns the number of records.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Identifiers returns every known identifier in sorted order.
func (s *Store) Identifiers() []Identifier {
	if s == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(s.records))
}

// Source names where the store was loaded from.
func (s *Store) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}

// Digest is a stable sha256 over all identifiers and records.
func (s *Store) Digest() string {
	h := sha256.New()
	for _, id := range s.Identifiers() {
		h.Write([]byte(id))
		h.Write([]byte{0})
		h.Write(s.records[id].raw)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
