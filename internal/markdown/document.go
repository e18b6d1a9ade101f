package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// ErrUnterminatedFrontmatter is returned when a document opens a YAML
// frontmatter block but never closes it.
var ErrUnterminatedFrontmatter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Document is the analysis result for a Markdown file used as a page block.
type Document struct {
	// Fields holds the YAML frontmatter, empty when the file has none.
	Fields map[string]any
	// Body is the content after the frontmatter, byte-for-byte.
	Body []byte
	// Title is the frontmatter "title" when set, otherwise the text of the
	// first level-1 heading.
	Title string
	// Links lists inline, image and autolink destinations in document order.
	Links []string
}

// Parse splits frontmatter from content and walks the body's Goldmark AST.
// It does not render anything.
func Parse(content []byte) (*Document, error) {
	fm, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	doc := &Document{Fields: map[string]any{}, Body: body}
	if len(fm) > 0 {
		if err := yaml.Unmarshal(fm, &doc.Fields); err != nil {
			return nil, fmt.Errorf("parse frontmatter: %w", err)
		}
		if doc.Fields == nil {
			doc.Fields = map[string]any{}
		}
	}
	if title, ok := doc.Fields["title"].(string); ok {
		doc.Title = strings.TrimSpace(title)
	}

	root := goldmark.New().Parser().Parse(text.NewReader(body))
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Heading:
			if node.Level == 1 && doc.Title == "" {
				doc.Title = strings.TrimSpace(inlineText(node, body))
			}
		case *gmast.AutoLink:
			doc.Links = append(doc.Links, string(node.URL(body)))
		case *gmast.Image:
			doc.Links = append(doc.Links, string(node.Destination))
		case *gmast.Link:
			doc.Links = append(doc.Links, string(node.Destination))
		}
		return gmast.WalkContinue, nil
	})
	return doc, nil
}

// inlineText concatenates the literal text below n.
func inlineText(n gmast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		default:
			b.WriteString(inlineText(c, source))
		}
	}
	return b.String()
}

func splitFrontmatter(content []byte) (fm []byte, body []byte, err error) {
	nl := "\n"
	if bytes.HasPrefix(content, []byte("---\r\n")) {
		nl = "\r\n"
	}
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, nil
	}
	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return nil, rest[len(open):], nil
	}
	closing := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		return nil, nil, ErrUnterminatedFrontmatter
	}
	return rest[:idx+len(nl)], rest[idx+len(closing):], nil
}
