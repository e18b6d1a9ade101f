package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpage/internal/config"
	"git.home.luguber.info/inful/docpage/internal/metrics"
	"git.home.luguber.info/inful/docpage/internal/notify"
)

// Global is shared state bound into every command's Run.
type Global struct {
	// Stdout receives command output; log lines go to stderr.
	Stdout io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docpage.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build        BuildCmd        `cmd:"" help:"Assemble pages and write them with their build manifests"`
	Lookup       LookupCmd       `cmd:"" help:"Print the metadata record for a component identifier"`
	Check        CheckCmd        `cmd:"" help:"Report metadata shape warnings and validate page definitions"`
	ImportSQLite ImportSQLiteCmd `cmd:"" name:"import-sqlite" help:"Copy the metadata store into a SQLite database"`
	Watch        WatchCmd        `cmd:"" help:"Rebuild pages whenever their inputs change"`
	Init         InitCmd         `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	setupLogging(config.LogLevelInfo, config.LogFormatText, c.Verbose)
	return nil
}

// setupLogging installs the default slog logger on stderr. Verbose forces debug.
func setupLogging(level config.LogLevel, format config.LogFormat, verbose bool) {
	if verbose {
		level = config.LogLevelDebug
	}
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}
	var handler slog.Handler
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfig reads the root config file and applies its logging section.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.Logging.Level, cfg.Logging.Format, root.Verbose)
	return cfg, nil
}

// newRecorder returns a Prometheus recorder when a textfile is configured.
func newRecorder(cfg *config.Config) metrics.Recorder {
	if cfg.Metrics.Textfile == "" {
		return metrics.NoopRecorder{}
	}
	return metrics.NewPrometheusRecorder(nil)
}

// flushMetrics writes the textfile for a Prometheus recorder.
func flushMetrics(cfg *config.Config, rec metrics.Recorder) {
	pr, ok := rec.(*metrics.PrometheusRecorder)
	if !ok || cfg.Metrics.Textfile == "" {
		return
	}
	if err := pr.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		slog.Warn("Failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
	}
}

// newNotifier connects to NATS when configured. A connection failure
// disables notifications instead of failing the command.
func newNotifier(cfg *config.Config) notify.Notifier {
	if cfg.Notify.NATSURL == "" {
		return notify.NoopNotifier{}
	}
	n, err := notify.NewNATSNotifier(cfg.Notify.NATSURL, cfg.Notify.Subject)
	if err != nil {
		slog.Warn("Build notifications disabled", "error", err)
		return notify.NoopNotifier{}
	}
	return n
}

func closeNotifier(n notify.Notifier) {
	if err := n.Close(); err != nil {
		slog.Warn("Failed to close notifier", "error", err)
	}
}

// commandContext is canceled on SIGINT/SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
