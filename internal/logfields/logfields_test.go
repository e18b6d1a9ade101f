package logfields

import (
	"log/slog"
	"testing"
	"time"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b-1", BuildID("b-1")},
		{"Page", KeyPage, "cards", Page("cards")},
		{"Identifier", KeyIdentifier, "src/components/card/Card.js", Identifier("src/components/card/Card.js")},
		{"Component", KeyComponent, "Card", Component("Card")},
		{"BlockKind", KeyBlockKind, "api_doc", BlockKind("api_doc")},
		{"SourcePath", KeySourcePath, "cards/simple.py", SourcePath("cards/simple.py")},
		{"MetadataSource", KeyMetadata, "metadata.json", MetadataSource("metadata.json")},
		{"Output", KeyOutput, "out/cards.json", Output("out/cards.json")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if v := Blocks(20); v.Key != KeyBlocks || v.Value.Int64() != 20 {
		t.Fatalf("Blocks mismatch: %v", v)
	}
	if v := Missing(2); v.Key != KeyMissing || v.Value.Int64() != 2 {
		t.Fatalf("Missing mismatch: %v", v)
	}
	if v := Duration(1500 * time.Microsecond); v.Key != KeyDurationMS || v.Value.Float64() != 1.5 {
		t.Fatalf("Duration mismatch: %v", v)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }
