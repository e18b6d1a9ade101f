package commands

import (
	"context"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/docpage/internal/build"
	"git.home.luguber.info/inful/docpage/internal/config"
	"git.home.luguber.info/inful/docpage/internal/pagedef"
	"git.home.luguber.info/inful/docpage/internal/watch"
)

// WatchCmd implements the 'watch' command: build once, then rebuild on change.
type WatchCmd struct {
	Pages []string `arg:"" optional:"" type:"existingfile" help:"Page definition files (default: pages from the configuration)"`
}

func (c *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	req := build.Request{Config: cfg, Pages: c.Pages}
	if _, err := RunBuild(ctx, g.out(), cfg, req); err != nil {
		slog.Error("Initial build failed", "error", err)
	}

	paths, err := watchPaths(cfg, c.Pages)
	if err != nil {
		return err
	}
	rebuild := func(ctx context.Context, _ string) error {
		_, err := RunBuild(ctx, g.out(), cfg, req)
		return err
	}
	w, err := watch.New(paths, rebuild, watch.Options{
		Debounce: cfg.Watch.Debounce,
		Interval: cfg.Watch.Interval,
		Ignore:   cfg.Watch.Ignore,
		Exclude:  []string{cfg.Output.Directory, cfg.Metrics.Textfile},
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// watchPaths lists the metadata store, page definitions and every
// source they reference. Definitions that fail to load are watched alone so
// fixing them triggers a rebuild.
func watchPaths(cfg *config.Config, pages []string) ([]string, error) {
	if len(pages) == 0 {
		var err error
		if pages, err = cfg.PagePaths(); err != nil {
			return nil, err
		}
	}
	paths := []string{cfg.Metadata.Path}
	for _, p := range pages {
		paths = append(paths, p)
		def, err := pagedef.Load(p)
		if err != nil {
			continue
		}
		for _, rel := range def.SourcePaths() {
			paths = append(paths, filepath.Join(def.Dir(), filepath.FromSlash(rel)))
		}
	}
	return paths, nil
}
