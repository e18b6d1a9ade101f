package page

import "git.home.luguber.info/inful/docpage/internal/metadata"

// Page is an assembled page: blocks in render order.
type Page struct {
	Name   string  `json:"name" yaml:"name"`
	Title  string  `json:"title" yaml:"title"`
	Blocks []Block `json:"blocks" yaml:"blocks"`
}

// Len returns the number of blocks.
func (p *Page) Len() int { return len(p.Blocks) }

// Kinds returns the block kinds in order.
func (p *Page) Kinds() []BlockKind {
	kinds := make([]BlockKind, len(p.Blocks))
	for i, b := range p.Blocks {
		kinds[i] = b.Kind()
	}
	return kinds
}

// Missing returns the identifiers of API blocks whose record was absent, in
// page order.
func (p *Page) Missing() []metadata.Identifier {
	var ids []metadata.Identifier
	for _, b := range p.Blocks {
		if doc, ok := b.APIDoc(); ok && !doc.Present {
			ids = append(ids, doc.Identifier)
		}
	}
	return ids
}

// CountByKind tallies blocks per kind.
func (p *Page) CountByKind() map[BlockKind]int {
	counts := make(map[BlockKind]int, 4)
	for _, b := range p.Blocks {
		counts[b.Kind()]++
	}
	return counts
}
