package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docpage/internal/build"
	ferrors "git.home.luguber.info/inful/docpage/internal/foundation/errors"
	"git.home.luguber.info/inful/docpage/internal/markdown"
	"git.home.luguber.info/inful/docpage/internal/metadata"
	"git.home.luguber.info/inful/docpage/internal/pagedef"
)

// CheckCmd implements the 'check' command. Metadata findings are advisory
// unless --strict is set; invalid page definitions always fail.
type CheckCmd struct {
	Pages  []string `arg:"" optional:"" type:"existingfile" help:"Page definition files (default: pages from the configuration)"`
	Strict bool     `help:"Exit non-zero on metadata warnings and absent records"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	store, err := build.LoadStore(ctx, cfg)
	if err != nil {
		return err
	}
	w := g.out()

	warnings := 0
	for _, f := range metadata.Check(store) {
		warnings++
		_, _ = fmt.Fprintf(w, "warning: %s\n", f)
	}

	paths := c.Pages
	if len(paths) == 0 {
		if paths, err = cfg.PagePaths(); err != nil {
			return err
		}
	}

	var invalid []string
	for _, path := range paths {
		def, err := pagedef.Load(path)
		if err != nil {
			invalid = append(invalid, path)
			_, _ = fmt.Fprintf(w, "error: %s: %s\n", path, describe(err))
			continue
		}
		for _, rel := range def.SourcePaths() {
			if _, err := os.Stat(filepath.Join(def.Dir(), filepath.FromSlash(rel))); errors.Is(err, fs.ErrNotExist) {
				invalid = append(invalid, path)
				_, _ = fmt.Fprintf(w, "error: %s: missing source file %s\n", def.Name, rel)
			}
		}
		if def.Intro != "" {
			intro := filepath.Join(def.Dir(), filepath.FromSlash(def.Intro))
			broken, err := brokenLinks(intro)
			if err != nil {
				invalid = append(invalid, path)
				_, _ = fmt.Fprintf(w, "error: %s: intro %s: %v\n", def.Name, def.Intro, err)
			}
			for _, link := range broken {
				warnings++
				_, _ = fmt.Fprintf(w, "warning: %s: intro links to missing file %s\n", def.Name, link)
			}
		}
		for _, api := range def.API {
			if _, ok := store.Lookup(api.Identifier); !ok {
				warnings++
				_, _ = fmt.Fprintf(w, "warning: %s: no metadata for %s\n", def.Name, api.Identifier)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "%d records, %d pages, %d warnings, %d errors\n", store.Len(), len(paths), warnings, len(invalid))

	if len(invalid) > 0 {
		return ferrors.ValidationError("page definitions failed validation").
			WithContext("errors", len(invalid)).
			Build()
	}
	if c.Strict && warnings > 0 {
		return ferrors.ValidationError("metadata warnings in strict mode").
			WithContext("warnings", warnings).
			Build()
	}
	return nil
}

// describe renders a classified error's message and problems on one line.
func describe(err error) string {
	ce, ok := ferrors.AsClassified(err)
	if !ok {
		return err.Error()
	}
	if p, ok := ce.Context()["problems"]; ok {
		return fmt.Sprintf("%s: %v", ce.Message(), p)
	}
	if cause := ce.Cause(); cause != nil {
		return fmt.Sprintf("%s: %v", ce.Message(), cause)
	}
	return ce.Message()
}

// brokenLinks returns the relative link destinations in the markdown file at
// path that do not resolve to an existing file. A missing intro is reported
// by the source check, so it yields no links here.
func brokenLinks(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}
	doc, err := markdown.Parse(content)
	if err != nil {
		return nil, err
	}
	var broken []string
	for _, link := range doc.Links {
		u, err := url.Parse(link)
		if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" || strings.HasPrefix(u.Path, "/") {
			continue
		}
		target := filepath.Join(filepath.Dir(path), filepath.FromSlash(u.Path))
		if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
			broken = append(broken, link)
		}
	}
	return broken, nil
}
