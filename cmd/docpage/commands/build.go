package commands

import (
	"context"
	"fmt"
	"io"

	"git.home.luguber.info/inful/docpage/internal/build"
	"git.home.luguber.info/inful/docpage/internal/config"
	ferrors "git.home.luguber.info/inful/docpage/internal/foundation/errors"
	"git.home.luguber.info/inful/docpage/internal/output"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Pages  []string `arg:"" optional:"" type:"existingfile" help:"Page definition files (default: pages from the configuration)"`
	Output string   `short:"o" help:"Override output.directory" type:"path"`
	Format string   `short:"f" help:"Override output.format (json|yaml)"`
	Force  bool     `help:"Rebuild pages whose inputs are unchanged"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	switch output.Format(b.Format) {
	case "":
	case output.FormatJSON, output.FormatYAML:
		cfg.Output.Format = output.Format(b.Format)
	default:
		return ferrors.ValidationError("unsupported output format").
			WithContext("format", b.Format).
			Build()
	}

	ctx, cancel := commandContext()
	defer cancel()
	_, err = RunBuild(ctx, g.out(), cfg, build.Request{Config: cfg, Pages: b.Pages, Force: b.Force})
	return err
}

// RunBuild executes one build run with the recorder and notifier the
// configuration asks for, and prints a line per page to w.
func RunBuild(ctx context.Context, w io.Writer, cfg *config.Config, req build.Request) (*build.Result, error) {
	rec := newRecorder(cfg)
	notifier := newNotifier(cfg)
	defer closeNotifier(notifier)

	svc := build.NewService(build.WithRecorder(rec), build.WithNotifier(notifier))
	result, err := svc.Run(ctx, req)
	flushMetrics(cfg, rec)

	if result != nil {
		printResult(w, result)
	}
	return result, err
}

func printResult(w io.Writer, r *build.Result) {
	for _, p := range r.Pages {
		switch p.Status {
		case build.StatusSkipped:
			_, _ = fmt.Fprintf(w, "%s: unchanged\n", p.Name)
		case build.StatusFailed:
			_, _ = fmt.Fprintf(w, "%s: failed\n", displayName(p))
		default:
			_, _ = fmt.Fprintf(w, "%s: %s (%d blocks, %d missing metadata) -> %s\n",
				p.Name, p.Status, p.Blocks, len(p.Missing), p.Output)
			for _, id := range p.Missing {
				_, _ = fmt.Fprintf(w, "  missing metadata: %s\n", id)
			}
		}
	}
}

func displayName(p build.PageResult) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Definition
}
