package metadata

import "fmt"

// Finding is a shape problem spotted in a record. Findings are advisory: the
// store passes malformed records through untouched and the renderer decides
// how to degrade.
type Finding struct {
	Identifier Identifier
	Message    string
}

func (f Finding) String() string { return fmt.Sprintf("%s: %s", f.Identifier, f.Message) }

// Check inspects every record for the fields API blocks usually render.
func Check(store *Store) []Finding {
	var findings []Finding
	for _, id := range store.Identifiers() {
		rec, _ := store.Get(id)
		var doc any
		if err := rec.Decode(&doc); err != nil {
			findings = append(findings, Finding{Identifier: id, Message: "record does not decode: " + err.Error()})
			continue
		}
		obj, ok := doc.(map[string]any)
		if !ok {
			findings = append(findings, Finding{Identifier: id, Message: fmt.Sprintf("record is %T, expected an object", doc)})
			continue
		}
		if d, ok := obj["description"].(string); !ok || d == "" {
			findings = append(findings, Finding{Identifier: id, Message: "missing description"})
		}
		switch props := obj["props"].(type) {
		case nil:
			findings = append(findings, Finding{Identifier: id, Message: "missing props"})
		case map[string]any:
		default:
			findings = append(findings, Finding{Identifier: id, Message: fmt.Sprintf("props is %T, expected an object", props)})
		}
	}
	return findings
}
