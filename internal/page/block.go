package page

import (
	"bytes"
	"encoding/json"

	"git.home.luguber.info/inful/docpage/internal/metadata"
)

// BlockKind tags the payload a Block carries.
type BlockKind string

const (
	KindExample           BlockKind = "example"
	KindHighlightedSource BlockKind = "highlighted_source"
	KindAPIDoc            BlockKind = "api_doc"
	KindMarkdown          BlockKind = "markdown"
)

// ExampleRef points the renderer at a runnable example.
type ExampleRef struct {
	Name       string `json:"name" yaml:"name"`
	SourcePath string `json:"source_path,omitempty" yaml:"source_path,omitempty"`
	// Entrypoint is the symbol the sandbox should mount, when the example
	// module exposes more than one.
	Entrypoint string `json:"entrypoint,omitempty" yaml:"entrypoint,omitempty"`
}

// Source is the exact text of an example file plus its highlight language.
type Source struct {
	Path     string `json:"path" yaml:"path"`
	Language string `json:"language" yaml:"language"`
	Text     string `json:"text" yaml:"text"`
}

// APIDoc pairs a component's documentation record with its display name.
// Present is false when the store had no record; Record is then zero.
type APIDoc struct {
	Identifier  metadata.Identifier `json:"identifier" yaml:"identifier"`
	DisplayName string              `json:"display_name" yaml:"display_name"`
	Present     bool                `json:"present" yaml:"present"`
	Record      metadata.Record     `json:"record" yaml:"record"`
}

// Markdown is prose rendered between blocks.
type Markdown struct {
	Path  string `json:"path" yaml:"path"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Text  string `json:"text" yaml:"text"`
}

// Block is one renderable unit. Its payload is fixed at construction; the
// accessors return copies.
type Block struct {
	kind     BlockKind
	example  ExampleRef
	source   Source
	apiDoc   APIDoc
	markdown Markdown
}

// ExampleBlock constructs an example block.
func ExampleBlock(ref ExampleRef) Block { return Block{kind: KindExample, example: ref} }

// SourceBlock constructs a highlighted source block.
func SourceBlock(src Source) Block { return Block{kind: KindHighlightedSource, source: src} }

// APIDocBlock constructs an API block. A zero rec means the record is absent.
func APIDocBlock(id metadata.Identifier, rec metadata.Record, present bool, displayName string) Block {
	if !present {
		rec = metadata.Record{}
	}
	return Block{kind: KindAPIDoc, apiDoc: APIDoc{
		Identifier:  id,
		DisplayName: displayName,
		Present:     present,
		Record:      rec,
	}}
}

// MarkdownBlock constructs a prose block.
func MarkdownBlock(md Markdown) Block { return Block{kind: KindMarkdown, markdown: md} }

// Kind returns the block's tag.
func (b Block) Kind() BlockKind { return b.kind }

// Example returns the example payload; ok is false for other kinds.
func (b Block) Example() (ExampleRef, bool) { return b.example, b.kind == KindExample }

// Source returns the highlighted source payload; ok is false for other kinds.
func (b Block) Source() (Source, bool) { return b.source, b.kind == KindHighlightedSource }

// APIDoc returns the API payload; ok is false for other kinds.
func (b Block) APIDoc() (APIDoc, bool) { return b.apiDoc, b.kind == KindAPIDoc }

// Markdown returns the prose payload; ok is false for other kinds.
func (b Block) Markdown() (Markdown, bool) { return b.markdown, b.kind == KindMarkdown }

// blockView is the wire shape handed to the renderer.
type blockView struct {
	Kind     BlockKind   `json:"kind" yaml:"kind"`
	Example  *ExampleRef `json:"example,omitempty" yaml:"example,omitempty"`
	Source   *Source     `json:"source,omitempty" yaml:"source,omitempty"`
	APIDoc   *APIDoc     `json:"api_doc,omitempty" yaml:"api_doc,omitempty"`
	Markdown *Markdown   `json:"markdown,omitempty" yaml:"markdown,omitempty"`
}

func (b Block) view() blockView {
	v := blockView{Kind: b.kind}
	switch b.kind {
	case KindExample:
		v.Example = &b.example
	case KindHighlightedSource:
		v.Source = &b.source
	case KindAPIDoc:
		v.APIDoc = &b.apiDoc
	case KindMarkdown:
		v.Markdown = &b.markdown
	}
	return v
}

// MarshalJSON encodes the block as {"kind": ..., "<kind payload>": {...}}.
// Markup in source text and records is kept as is; the encoding/json caller
// re-escapes it when it asks for HTML escaping.
func (b Block) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(b.view()); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalYAML mirrors MarshalJSON for YAML output.
func (b Block) MarshalYAML() (any, error) { return b.view(), nil }
