package metadata

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Identifier is the normalized, slash-separated path that keys a Record.
type Identifier string

// ParseIdentifier validates raw and returns its normalized form.
//
// Normalization trims surrounding whitespace, applies Unicode NFC, converts
// backslashes to slashes and cleans "." segments, so "src\\card\\./Card.js" and
// "src/card/Card.js" are the same key.
func ParseIdentifier(raw string) (Identifier, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}
	if strings.ContainsRune(s, 0) {
		return "", fmt.Errorf("%w: %q contains NUL", ErrInvalidIdentifier, raw)
	}
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\\", "/")
	if strings.HasPrefix(s, "/") || (len(s) >= 2 && s[1] == ':') {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidIdentifier, raw)
	}
	s = path.Clean(s)
	if s == "." || s == ".." || strings.HasPrefix(s, "../") {
		return "", fmt.Errorf("%w: %q escapes the component root", ErrInvalidIdentifier, raw)
	}
	return Identifier(s), nil
}

// MustIdentifier is ParseIdentifier for literals; it panics on invalid input.
func MustIdentifier(raw string) Identifier {
	id, err := ParseIdentifier(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func (id Identifier) String() string { return string(id) }

// Base returns the file name without its extension ("Card" for
// "src/components/card/Card.js"). It is the default display name of a component.
func (id Identifier) Base() string {
	base := path.Base(string(id))
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
