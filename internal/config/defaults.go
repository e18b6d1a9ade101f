package config

import (
	"time"

	ferrors "git.home.luguber.info/inful/docpage/internal/foundation/errors"
)

const (
	defaultOutputDirectory = "out"
	defaultWatchDebounce   = 500 * time.Millisecond
	defaultNotifySubject   = "docpage.pages"
)

var defaultWatchIgnore = []string{"**/.git/**", "**/*.swp", "**/*~", "**/.#*"}

// normalize canonicalizes enum fields, rejecting unknown spellings.
func normalize(cfg *Config) error {
	var err error
	if cfg.Logging.Level, err = logLevels.Normalize(string(cfg.Logging.Level)); err != nil {
		return invalid("logging.level", err)
	}
	if cfg.Logging.Format, err = logFormats.Normalize(string(cfg.Logging.Format)); err != nil {
		return invalid("logging.format", err)
	}
	if cfg.Output.Format, err = outputFormats.Normalize(string(cfg.Output.Format)); err != nil {
		return invalid("output.format", err)
	}
	if cfg.Metadata.Format, err = metadataFormats.Normalize(string(cfg.Metadata.Format)); err != nil {
		return invalid("metadata.format", err)
	}
	return nil
}

func invalid(field string, err error) error {
	return ferrors.ConfigError("invalid configuration value").
		WithCause(err).
		WithContext("field", field).
		Build()
}

func applyDefaults(cfg *Config) {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = defaultOutputDirectory
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = defaultWatchDebounce
	}
	if cfg.Watch.Ignore == nil {
		cfg.Watch.Ignore = append([]string(nil), defaultWatchIgnore...)
	}
	if cfg.Notify.NATSURL != "" && cfg.Notify.Subject == "" {
		cfg.Notify.Subject = defaultNotifySubject
	}
}
