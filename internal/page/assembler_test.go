package page

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	ferrors "git.home.luguber.info/inful/docpage/internal/foundation/errors"
	"git.home.luguber.info/inful/docpage/internal/metadata"
	"git.home.luguber.info/inful/docpage/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu       sync.Mutex
	blocks   map[string]int
	missing  int
	outcomes []metrics.BuildOutcomeLabel
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{blocks: map[string]int{}}
}

func (r *countingRecorder) ObservePageBuildDuration(string, time.Duration) {}
func (r *countingRecorder) SetMetadataRecords(int)                         {}
func (r *countingRecorder) IncBlock(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks[kind]++
}
func (r *countingRecorder) IncMissingMetadata(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.missing++
}
func (r *countingRecorder) IncBuildOutcome(_ string, o metrics.BuildOutcomeLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func record(t *testing.T, raw string) metadata.Record {
	t.Helper()
	rec, err := metadata.NewRecord([]byte(raw))
	require.NoError(t, err)
	return rec
}

func TestBuild_ScenarioAbsentRecordPassesThrough(t *testing.T) {
	recordA := record(t, `{"description":"A widget","props":{}}`)
	store := metadata.NewStore(map[metadata.Identifier]metadata.Record{"A": recordA})
	fn1 := ExampleRef{Name: "fn1"}

	spec := Spec{Name: "widgets", Entries: []Entry{
		ExampleEntry{Example: fn1},
		APIDocEntry{Identifier: "A", Name: "Widget"},
		APIDocEntry{Identifier: "B", Name: "Gadget"},
	}}

	p, err := NewAssembler(store, fstest.MapFS{}).Build(context.Background(), spec)
	require.NoError(t, err)

	require.Equal(t, []Block{
		ExampleBlock(fn1),
		APIDocBlock("A", recordA, true, "Widget"),
		APIDocBlock("B", metadata.Record{}, false, "Gadget"),
	}, p.Blocks)
	require.Equal(t, []metadata.Identifier{"B"}, p.Missing())
	require.Equal(t, "widgets", p.Title)
}

func cardsFixture(t *testing.T) (*metadata.Store, fstest.MapFS, Spec) {
	t.Helper()
	fsys := fstest.MapFS{
		"components/cards/simple.py":        {Data: []byte("import dash_bootstrap_components as dbc\n\ncards = dbc.Card()\n")},
		"components/cards/content_types.py": {Data: []byte("cards = dbc.Card([dbc.CardHeader('x')])\r\n")},
		"components/cards/group.py":         {Data: []byte("cards = dbc.CardGroup([])\n")},
		"components/cards/columns.py":       {Data: []byte("cards = dbc.CardColumns([])\n")},
	}

	records := map[metadata.Identifier]metadata.Record{}
	var entries []Entry
	for _, name := range []string{"simple", "content_types", "group", "columns"} {
		entries = append(entries, ExampleWithSource(ExampleRef{
			Name:       name,
			SourcePath: "components/cards/" + name + ".py",
			Entrypoint: "cards",
		})...)
	}
	for _, c := range []string{
		"CardDeck", "CardGroup", "CardColumns", "Card", "CardHeader", "CardBody",
		"CardFooter", "CardTitle", "CardSubtitle", "CardLink", "CardImg", "CardImgOverlay",
	} {
		id := metadata.MustIdentifier("src/components/card/" + c + ".js")
		if c != "CardImgOverlay" && c != "CardSubtitle" {
			records[id] = record(t, fmt.Sprintf(`{"description":%q,"props":{}}`, c))
		}
		entries = append(entries, APIDocEntry{Identifier: id, Name: c})
	}
	return metadata.NewStore(records), fsys, Spec{Name: "cards", Title: "Cards", Entries: entries}
}

func TestBuild_CardsPageLengthAndOrder(t *testing.T) {
	store, fsys, spec := cardsFixture(t)
	rec := newCountingRecorder()

	p, err := NewAssembler(store, fsys, WithRecorder(rec)).Build(context.Background(), spec)
	require.NoError(t, err)

	// 4 examples * 2 + 12 API blocks
	require.Equal(t, 20, p.Len())
	kinds := p.Kinds()
	for i := 0; i < 8; i += 2 {
		require.Equal(t, KindExample, kinds[i])
		require.Equal(t, KindHighlightedSource, kinds[i+1])
	}
	for _, k := range kinds[8:] {
		require.Equal(t, KindAPIDoc, k)
	}

	first, ok := p.Blocks[8].APIDoc()
	require.True(t, ok)
	require.Equal(t, "CardDeck", first.DisplayName)
	last, _ := p.Blocks[19].APIDoc()
	require.Equal(t, "CardImgOverlay", last.DisplayName)
	require.False(t, last.Present)

	require.Equal(t, []metadata.Identifier{
		"src/components/card/CardSubtitle.js",
		"src/components/card/CardImgOverlay.js",
	}, p.Missing())
	require.Equal(t, 2, rec.missing)
	require.Equal(t, 12, rec.blocks[string(KindAPIDoc)])
	require.Equal(t, []metrics.BuildOutcomeLabel{metrics.OutcomeDegraded}, rec.outcomes)
}

func TestBuild_HighlightedSourceIsByteForByte(t *testing.T) {
	store, fsys, spec := cardsFixture(t)
	p, err := NewAssembler(store, fsys).Build(context.Background(), spec)
	require.NoError(t, err)

	for i, b := range p.Blocks {
		ex, ok := b.Example()
		if !ok {
			continue
		}
		src, ok := p.Blocks[i+1].Source()
		require.True(t, ok, "example %s must be followed by its source", ex.Name)
		require.Equal(t, ex.SourcePath, src.Path)
		require.Equal(t, string(fsys[ex.SourcePath].Data), src.Text)
		require.Equal(t, "python", src.Language)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	store, fsys, spec := cardsFixture(t)
	asm := NewAssembler(store, fsys)

	first, err := asm.Build(context.Background(), spec)
	require.NoError(t, err)
	for range 5 {
		again, err := asm.Build(context.Background(), spec)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestBuild_MissingSourceFileFailsBeforeOutput(t *testing.T) {
	store, fsys, spec := cardsFixture(t)
	delete(fsys, "components/cards/columns.py")
	rec := newCountingRecorder()

	p, err := NewAssembler(store, fsys, WithRecorder(rec)).Build(context.Background(), spec)
	require.Nil(t, p)
	require.ErrorIs(t, err, ErrMissingSourceFile)

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	require.True(t, classified.IsFatal())
	path, _ := classified.Context().GetString("path")
	require.Equal(t, "components/cards/columns.py", path)

	require.Empty(t, rec.blocks, "no block may be produced")
	require.Equal(t, []metrics.BuildOutcomeLabel{metrics.OutcomeFailed}, rec.outcomes)
}

func TestBuild_MissingExampleSourceFails(t *testing.T) {
	rec := newCountingRecorder()
	spec := Spec{Name: "cards", Entries: []Entry{
		ExampleEntry{Example: ExampleRef{Name: "simple", SourcePath: "components/cards/missing.py"}},
	}}

	p, err := NewAssembler(nil, fstest.MapFS{}, WithRecorder(rec)).Build(context.Background(), spec)
	require.Nil(t, p)
	require.ErrorIs(t, err, ErrMissingSourceFile)
	require.Empty(t, rec.blocks)
}

func TestBuild_ExampleWithoutSourcePathReadsNothing(t *testing.T) {
	p, err := NewAssembler(nil, nil).Build(context.Background(), Spec{
		Name:    "x",
		Entries: []Entry{ExampleEntry{Example: ExampleRef{Name: "inline"}}},
	})
	require.NoError(t, err)
	require.Equal(t, []BlockKind{KindExample}, p.Kinds())
}

func TestBuild_NilFSFailsForSourceEntries(t *testing.T) {
	_, err := NewAssembler(nil, nil).Build(context.Background(), Spec{
		Name:    "x",
		Entries: []Entry{SourceEntry{Path: "a.py"}},
	})
	require.ErrorIs(t, err, ErrMissingSourceFile)
}

func TestBuild_CanceledContext(t *testing.T) {
	store, fsys, spec := cardsFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAssembler(store, fsys).Build(ctx, spec)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBuild_MarkdownBlockAndTitle(t *testing.T) {
	fsys := fstest.MapFS{
		"intro.md": {Data: []byte("---\nweight: 1\n---\n# Alerts\n\nContextual feedback.\n")},
		"alert.py": {Data: []byte("alert = dbc.Alert('hi')\n")},
	}
	spec := Spec{Name: "alerts", Entries: []Entry{
		MarkdownEntry{Path: "intro.md"},
		ExampleEntry{Example: ExampleRef{Name: "alert", SourcePath: "alert.py"}},
		SourceEntry{Path: "alert.py", Language: "pycon"},
		APIDocEntry{Identifier: "src/components/Alert.js"},
	}}

	p, err := NewAssembler(metadata.NewStore(nil), fsys).Build(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, "Alerts", p.Title)

	md, ok := p.Blocks[0].Markdown()
	require.True(t, ok)
	require.Equal(t, "# Alerts\n\nContextual feedback.\n", md.Text)

	src, _ := p.Blocks[2].Source()
	require.Equal(t, "pycon", src.Language)

	doc, _ := p.Blocks[3].APIDoc()
	require.Equal(t, "Alert", doc.DisplayName, "display name defaults to the identifier base")
}

func TestBuild_UnterminatedFrontmatterIsInvalidSpec(t *testing.T) {
	fsys := fstest.MapFS{"intro.md": {Data: []byte("---\ntitle: x\n")}}
	_, err := NewAssembler(nil, fsys).Build(context.Background(), Spec{
		Name:    "broken",
		Entries: []Entry{MarkdownEntry{Path: "intro.md"}},
	})
	require.ErrorIs(t, err, ErrInvalidSpec)
}

func TestBuild_MalformedMarkdownCountsNoBlocks(t *testing.T) {
	fsys := fstest.MapFS{
		"alert.py": {Data: []byte("alert = 1\n")},
		"notes.md": {Data: []byte("---\ntitle: x\n")},
	}
	rec := newCountingRecorder()
	_, err := NewAssembler(metadata.NewStore(nil), fsys, WithRecorder(rec)).Build(context.Background(), Spec{
		Name: "alerts",
		Entries: []Entry{
			ExampleEntry{Example: ExampleRef{Name: "alert", SourcePath: "alert.py"}},
			SourceEntry{Path: "alert.py"},
			APIDocEntry{Identifier: "src/components/Alert.js"},
			MarkdownEntry{Path: "notes.md"},
		},
	})
	require.ErrorIs(t, err, ErrInvalidSpec)
	require.Empty(t, rec.blocks)
	require.Zero(t, rec.missing)
	require.Equal(t, []metrics.BuildOutcomeLabel{metrics.OutcomeFailed}, rec.outcomes)
}

func TestBuild_ConcurrentBuildsShareStore(t *testing.T) {
	store, fsys, spec := cardsFixture(t)
	asm := NewAssembler(store, fsys)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := asm.Build(context.Background(), spec)
			if err == nil && p.Len() != 20 {
				err = errors.New("unexpected page length")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestBlock_JSONShape(t *testing.T) {
	p := &Page{Name: "n", Title: "T", Blocks: []Block{
		ExampleBlock(ExampleRef{Name: "simple", SourcePath: "simple.py"}),
		SourceBlock(Source{Path: "simple.py", Language: "python", Text: "x = 1\n"}),
		APIDocBlock("src/Card.js", record(t, `{"description":"Card"}`), true, "Card"),
		APIDocBlock("src/Gone.js", record(t, `{"ignored":true}`), false, "Gone"),
	}}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
	  "name": "n",
	  "title": "T",
	  "blocks": [
	    {"kind": "example", "example": {"name": "simple", "source_path": "simple.py"}},
	    {"kind": "highlighted_source", "source": {"path": "simple.py", "language": "python", "text": "x = 1\n"}},
	    {"kind": "api_doc", "api_doc": {"identifier": "src/Card.js", "display_name": "Card", "present": true, "record": {"description": "Card"}}},
	    {"kind": "api_doc", "api_doc": {"identifier": "src/Gone.js", "display_name": "Gone", "present": false, "record": null}}
	  ]
	}`, string(data))
}

func TestBlock_JSONKeepsMarkup(t *testing.T) {
	b := APIDocBlock("src/Card.js", record(t, `{"description":"<Card> & co"}`), true, "Card")

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(SourceBlock(Source{Path: "a.py", Text: "x = '<b>'"})))
	require.NoError(t, enc.Encode(b))
	assert.Contains(t, buf.String(), `"text":"x = '<b>'"`)
	assert.Contains(t, buf.String(), `"description":"<Card> & co"`)

	escaped, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(escaped), `\u003cCard\u003e`)
}

func TestBlock_AccessorsRejectOtherKinds(t *testing.T) {
	b := ExampleBlock(ExampleRef{Name: "x"})
	_, ok := b.Source()
	require.False(t, ok)
	_, ok = b.APIDoc()
	require.False(t, ok)
	_, ok = b.Markdown()
	require.False(t, ok)
	ex, ok := b.Example()
	require.True(t, ok)
	require.Equal(t, "x", ex.Name)
}
