package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docpage/internal/foundation/errors"
	"git.home.luguber.info/inful/docpage/internal/metadata"
	"git.home.luguber.info/inful/docpage/internal/output"
)

const initHeader = `# docpage configuration
# Relative paths are resolved against this file's directory.
# ${VAR} references are expanded from the environment, .env and .env.local.
`

// Example returns the configuration written by Init.
func Example() *Config {
	return &Config{
		Metadata: MetadataConfig{Path: "metadata.json", Format: metadata.FormatJSON},
		Pages:    []string{"pages/*.yaml"},
		Output:   OutputConfig{Directory: defaultOutputDirectory, Format: output.FormatJSON},
		Logging:  LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Watch: WatchConfig{
			Debounce: defaultWatchDebounce,
			Ignore:   append([]string(nil), defaultWatchIgnore...),
		},
	}
}

// Init writes an example configuration to path. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return ferrors.FileSystemError("failed to stat configuration file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return ferrors.InternalError("failed to encode example configuration").WithCause(err).Build()
	}
	if err := os.WriteFile(path, append([]byte(initHeader), data...), 0o644); err != nil {
		return ferrors.FileSystemError("failed to write configuration file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}
