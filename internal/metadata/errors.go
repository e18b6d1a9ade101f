package metadata

import "errors"

var (
	// ErrInvalidIdentifier is returned by ParseIdentifier for unusable keys.
	ErrInvalidIdentifier = errors.New("invalid component identifier")
	// ErrDuplicateIdentifier is returned by Load when two source keys normalize
	// to the same Identifier.
	ErrDuplicateIdentifier = errors.New("duplicate component identifier")
	// ErrInvalidRecord is returned for record bytes that are not valid JSON.
	ErrInvalidRecord = errors.New("invalid documentation record")
	// ErrUnknownFormat is returned by SourceFor when no source matches.
	ErrUnknownFormat = errors.New("unknown metadata format")
)
