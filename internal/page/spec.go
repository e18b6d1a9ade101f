package page

import "git.home.luguber.info/inful/docpage/internal/metadata"

// Entry is one declared item of a page. The concrete types are ExampleEntry,
// SourceEntry, APIDocEntry and MarkdownEntry.
type Entry interface {
	entry()
}

// ExampleEntry declares an example block.
type ExampleEntry struct {
	Example ExampleRef
}

// SourceEntry declares a highlighted source block for the file at Path.
type SourceEntry struct {
	Path string
	// Language overrides the extension-based highlight language.
	Language string
}

// APIDocEntry declares an API block for a component. An empty Name falls back
// to Identifier.Base().
type APIDocEntry struct {
	Identifier metadata.Identifier
	Name       string
}

// MarkdownEntry declares a prose block read from Path.
type MarkdownEntry struct {
	Path string
}

func (ExampleEntry) entry()  {}
func (SourceEntry) entry()   {}
func (APIDocEntry) entry()   {}
func (MarkdownEntry) entry() {}

// ExampleWithSource expands to the usual example + highlighted source pair.
func ExampleWithSource(ref ExampleRef) []Entry {
	return []Entry{ExampleEntry{Example: ref}, SourceEntry{Path: ref.SourcePath}}
}

// Spec is the ordered declaration of a page.
type Spec struct {
	Name    string
	Title   string
	Entries []Entry
}

// sourcePaths returns every file the spec reads, in declaration order. An
// example's source file counts even when no SourceEntry shows it.
func (s Spec) sourcePaths() []string {
	var paths []string
	for _, e := range s.Entries {
		switch e := e.(type) {
		case ExampleEntry:
			if e.Example.SourcePath != "" {
				paths = append(paths, e.Example.SourcePath)
			}
		case SourceEntry:
			paths = append(paths, e.Path)
		case MarkdownEntry:
			paths = append(paths, e.Path)
		}
	}
	return paths
}
