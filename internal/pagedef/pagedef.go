// Package pagedef loads page declarations from YAML files.
//
// A definition lists a page's examples and API components in render order:
//
//	name: cards
//	title: Cards
//	intro: intro.md
//	examples:
//	  - name: simple
//	    source: components/cards/simple.py
//	api:
//	  - identifier: src/components/card/Card.js
//	    name: Card
//
// Source and intro paths are relative to the directory holding the file.
package pagedef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/docpage/internal/foundation/errors"
	"git.home.luguber.info/inful/docpage/internal/metadata"
	"git.home.luguber.info/inful/docpage/internal/page"
	"gopkg.in/yaml.v3"
)

// Definition is one page declaration.
type Definition struct {
	Name     string     `yaml:"name"`
	Title    string     `yaml:"title,omitempty"`
	Intro    string     `yaml:"intro,omitempty"`
	Examples []Example  `yaml:"examples,omitempty"`
	API      []APIEntry `yaml:"api,omitempty"`

	path string
}

// Example declares an example and, unless HideSource is set, its
// highlighted source.
type Example struct {
	Name       string `yaml:"name"`
	Source     string `yaml:"source"`
	Entrypoint string `yaml:"entrypoint,omitempty"`
	Language   string `yaml:"language,omitempty"`
	HideSource bool   `yaml:"hide_source,omitempty"`
}

// APIEntry declares one API reference block.
type APIEntry struct {
	Identifier string `yaml:"identifier"`
	Name       string `yaml:"name,omitempty"`
}

// Load reads and validates the definition at path.
func Load(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "page definition unreadable").
			Fatal().
			WithContext("path", path).
			Build()
	}
	defer func() { _ = f.Close() }()

	def, err := Decode(f)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid page definition").
			Fatal().
			WithContext("path", path).
			Build()
	}
	def.path = path
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// Decode parses a definition without validating it. Unknown keys are errors.
func Decode(r io.Reader) (*Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty page definition")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

// Path returns the file the definition was loaded from.
func (d *Definition) Path() string { return d.path }

// Dir is the directory relative source paths resolve against.
func (d *Definition) Dir() string {
	if d.path == "" {
		return "."
	}
	return filepath.Dir(d.path)
}

// Validate reports every problem in the definition as one validation error.
func (d *Definition) Validate() error {
	var problems []string
	if strings.TrimSpace(d.Name) == "" {
		problems = append(problems, "name is required")
	}
	if d.Intro != "" && !validRelPath(d.Intro) {
		problems = append(problems, fmt.Sprintf("intro %q must be a relative path inside the page directory", d.Intro))
	}

	seen := make(map[string]bool, len(d.Examples))
	for i, ex := range d.Examples {
		switch {
		case ex.Name == "":
			problems = append(problems, fmt.Sprintf("examples[%d]: name is required", i))
		case seen[ex.Name]:
			problems = append(problems, fmt.Sprintf("examples[%d]: duplicate name %q", i, ex.Name))
		}
		seen[ex.Name] = true
		if !validRelPath(ex.Source) {
			problems = append(problems, fmt.Sprintf("examples[%d]: source %q must be a relative path inside the page directory", i, ex.Source))
		}
	}

	for i, api := range d.API {
		if _, err := metadata.ParseIdentifier(api.Identifier); err != nil {
			problems = append(problems, fmt.Sprintf("api[%d]: %v", i, err))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	b := ferrors.ValidationError("invalid page definition").
		WithContext("problems", strings.Join(problems, "; "))
	if d.path != "" {
		b = b.WithContext("path", d.path)
	}
	if d.Name != "" {
		b = b.WithContext("page", d.Name)
	}
	return b.Build()
}

// SourcePaths lists every file the page reads, relative to Dir.
func (d *Definition) SourcePaths() []string {
	var paths []string
	if d.Intro != "" {
		paths = append(paths, cleanRel(d.Intro))
	}
	for _, ex := range d.Examples {
		paths = append(paths, cleanRel(ex.Source))
	}
	return paths
}

// Spec converts the definition into an ordered page.Spec: the intro, each
// example followed by its source, then the API blocks.
func (d *Definition) Spec() (page.Spec, error) {
	if err := d.Validate(); err != nil {
		return page.Spec{}, err
	}
	spec := page.Spec{Name: d.Name, Title: d.Title}
	if d.Intro != "" {
		spec.Entries = append(spec.Entries, page.MarkdownEntry{Path: cleanRel(d.Intro)})
	}
	for _, ex := range d.Examples {
		src := cleanRel(ex.Source)
		spec.Entries = append(spec.Entries, page.ExampleEntry{Example: page.ExampleRef{
			Name:       ex.Name,
			SourcePath: src,
			Entrypoint: ex.Entrypoint,
		}})
		if !ex.HideSource {
			spec.Entries = append(spec.Entries, page.SourceEntry{Path: src, Language: ex.Language})
		}
	}
	for _, api := range d.API {
		id, _ := metadata.ParseIdentifier(api.Identifier)
		spec.Entries = append(spec.Entries, page.APIDocEntry{Identifier: id, Name: api.Name})
	}
	return spec, nil
}

// FS returns the file tree source paths resolve against.
func (d *Definition) FS() fs.FS { return os.DirFS(d.Dir()) }

func cleanRel(p string) string {
	return path.Clean(filepath.ToSlash(strings.TrimSpace(p)))
}

func validRelPath(p string) bool {
	if strings.TrimSpace(p) == "" {
		return false
	}
	return fs.ValidPath(cleanRel(p))
}
