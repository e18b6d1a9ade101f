package metadata

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Query evaluates a JSONPath expression (for example "$.props.children.type")
// against the decoded record and returns every match.
func Query(rec Record, selector string) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	var root any
	if err := rec.Decode(&root); err != nil {
		return nil, err
	}
	return x.Get(root), nil
}
