// Package config loads docpage.yaml.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docpage/internal/foundation/errors"
	"git.home.luguber.info/inful/docpage/internal/metadata"
	"git.home.luguber.info/inful/docpage/internal/output"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "docpage.yaml"

// Config is the docpage configuration.
type Config struct {
	Metadata MetadataConfig `yaml:"metadata"`
	// Pages lists page definition files; doublestar globs are expanded.
	Pages   []string      `yaml:"pages"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	Watch   WatchConfig   `yaml:"watch,omitempty"`
	Notify  NotifyConfig  `yaml:"notify,omitempty"`

	dir string
}

// MetadataConfig locates the component metadata store.
type MetadataConfig struct {
	Path string `yaml:"path"`
	// Format is json, yaml or sqlite; empty infers it from the extension.
	Format metadata.Format `yaml:"format,omitempty"`
}

// OutputConfig controls where assembled pages are written.
type OutputConfig struct {
	Directory string        `yaml:"directory"`
	Format    output.Format `yaml:"format"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig enables writing a Prometheus textfile after each build.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
	Ignore   []string      `yaml:"ignore,omitempty"`
}

// NotifyConfig enables NATS build events when NATSURL is set.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Load reads, expands, normalizes, defaults and validates the file at path.
// Relative paths inside the file are resolved against its directory.
func Load(path string) (*Config, error) {
	loadEnvFiles(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithContext("path", path).
				Build()
		}
		return nil, ferrors.ConfigError("failed to read configuration file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		if ce, ok := ferrors.AsClassified(err); ok {
			return nil, ce.WithContext("path", path)
		}
		return nil, err
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, ferrors.ConfigError("failed to resolve configuration directory").
			WithCause(err).
			Build()
	}
	cfg.resolvePaths(dir)
	return cfg, nil
}

// Parse decodes a configuration document after ${VAR} expansion. Relative
// paths stay relative to the working directory.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ferrors.ConfigError("failed to read configuration").WithCause(err).Build()
	}
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, ferrors.ConfigError("failed to parse configuration").WithCause(err).Build()
	}

	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Dir returns the directory relative paths were resolved against, or "" when
// the config was parsed from a reader.
func (c *Config) Dir() string { return c.dir }

// PagePaths expands Pages into a sorted, de-duplicated list of files. A
// pattern without glob characters must name an existing file.
func (c *Config) PagePaths() ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range c.Pages {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, ferrors.ConfigError("invalid page pattern").
				WithCause(err).
				WithContext("pattern", pattern).
				Build()
		}
		if len(matches) == 0 {
			return nil, ferrors.ConfigError("page pattern matched no files").
				WithContext("pattern", pattern).
				Build()
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (c *Config) resolvePaths(dir string) {
	c.dir = dir
	c.Metadata.Path = resolve(dir, c.Metadata.Path)
	c.Output.Directory = resolve(dir, c.Output.Directory)
	c.Metrics.Textfile = resolve(dir, c.Metrics.Textfile)
	for i, p := range c.Pages {
		c.Pages[i] = resolve(dir, p)
	}
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
