package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.home.luguber.info/inful/docpage/internal/metadata"
	"git.home.luguber.info/inful/docpage/internal/page"
	"github.com/stretchr/testify/require"
)

func sampleManifest() *BuildManifest {
	m := New("cards")
	m.Timestamp = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.Inputs = Inputs{
		Definition:     "pages/cards.yaml",
		DefinitionHash: "def-hash",
		Metadata:       MetadataInput{Source: "metadata.json", Digest: "meta-digest", Records: 12},
		Sources: []SourceInput{
			{Path: "components/cards/simple.py", Hash: "h1"},
			{Path: "components/cards/group.py", Hash: "h2"},
		},
		ToolVersion: "v1.0.0",
	}
	m.Outputs = Outputs{Path: "out/cards.json", Blocks: map[string]int{"example": 4}}
	m.Status = StatusSuccess
	return m
}

func TestManifest_NewAssignsIDs(t *testing.T) {
	a, b := New("cards"), New("cards")
	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, time.UTC, a.Timestamp.Location())
}

func TestManifest_FileRoundTrip(t *testing.T) {
	m := sampleManifest()
	data, err := m.ToJSON()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cards.manifest.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	restored, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, m, restored)
}

func TestManifest_HashIgnoresIdentityAndSourceOrder(t *testing.T) {
	m1 := sampleManifest()
	m2 := sampleManifest()
	m2.Timestamp = time.Now()
	m2.Status = StatusDegraded
	m2.Inputs.Sources = []SourceInput{m1.Inputs.Sources[1], m1.Inputs.Sources[0]}

	h1, err := m1.Hash()
	require.NoError(t, err)
	h2, err := m2.Hash()
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	m2.Inputs.Metadata.Digest = "other"
	h3, err := m2.Hash()
	require.NoError(t, err)
	require.NotEqual(t, h1, h3)
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := FromJSON([]byte("{"))
	require.Error(t, err)
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	rec, err := metadata.NewRecord([]byte(`{"description":"Card"}`))
	require.NoError(t, err)
	p := &page.Page{Name: "cards", Title: "Cards", Blocks: []page.Block{
		page.ExampleBlock(page.ExampleRef{Name: "simple"}),
		page.APIDocBlock("src/Card.js", rec, true, "Card"),
	}}

	fp1, err := Fingerprint(p)
	require.NoError(t, err)
	fp2, err := Fingerprint(p)
	require.NoError(t, err)
	require.Equal(t, fp1, fp2)
	require.NotEmpty(t, fp1)

	p.Title = "Card components"
	fp3, err := Fingerprint(p)
	require.NoError(t, err)
	require.NotEqual(t, fp1, fp3)
}

func TestHashBytes(t *testing.T) {
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashBytes(nil))
}
