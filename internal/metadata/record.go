package metadata

import (
	"bytes"
	"encoding/json"
)

// Record is an opaque documentation payload (props, descriptions, type
// signatures). The store never interprets it; renderers decode what they need.
type Record struct {
	raw json.RawMessage
}

// NewRecord copies raw into a Record. raw must be valid JSON.
func NewRecord(raw []byte) (Record, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return Record{}, ErrInvalidRecord
	}
	return Record{raw: bytes.Clone(trimmed)}, nil
}

// IsZero reports whether r is the absent record.
func (r Record) IsZero() bool { return len(r.raw) == 0 }

// Raw returns a copy of the record's JSON encoding.
func (r Record) Raw() json.RawMessage { return bytes.Clone(r.raw) }

// Decode unmarshals the record into v.
func (r Record) Decode(v any) error {
	if r.IsZero() {
		return ErrInvalidRecord
	}
	return json.Unmarshal(r.raw, v)
}

// MarshalJSON emits the record verbatim, or null when absent.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return r.raw, nil
}

// UnmarshalJSON stores data verbatim; null decodes to the absent record.
func (r *Record) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = Record{}
		return nil
	}
	rec, err := NewRecord(data)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// MarshalYAML exposes the decoded record so YAML output stays readable.
func (r Record) MarshalYAML() (any, error) {
	if r.IsZero() {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(r.raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
