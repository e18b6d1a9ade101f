package config

import (
	"log/slog"

	"git.home.luguber.info/inful/docpage/internal/foundation/normalization"
	"git.home.luguber.info/inful/docpage/internal/metadata"
	"git.home.luguber.info/inful/docpage/internal/output"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var (
	logLevels = normalization.New("log level", map[string]LogLevel{
		"debug":   LogLevelDebug,
		"info":    LogLevelInfo,
		"warn":    LogLevelWarn,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
	}, LogLevelInfo)

	logFormats = normalization.New("log format", map[string]LogFormat{
		"json": LogFormatJSON,
		"text": LogFormatText,
	}, LogFormatText)

	outputFormats = normalization.New("output format", map[string]output.Format{
		"json": output.FormatJSON,
		"yaml": output.FormatYAML,
		"yml":  output.FormatYAML,
	}, output.FormatJSON)

	metadataFormats = normalization.New("metadata format", map[string]metadata.Format{
		"json":    metadata.FormatJSON,
		"yaml":    metadata.FormatYAML,
		"yml":     metadata.FormatYAML,
		"sqlite":  metadata.FormatSQLite,
		"sqlite3": metadata.FormatSQLite,
	}, "")
)

// NormalizeLogLevel returns the canonical level for raw, falling back to info.
func NormalizeLogLevel(raw string) LogLevel {
	l, err := logLevels.Normalize(raw)
	if err != nil {
		return logLevels.Default()
	}
	return l
}

// NormalizeLogFormat returns the canonical format for raw, falling back to text.
func NormalizeLogFormat(raw string) LogFormat {
	f, err := logFormats.Normalize(raw)
	if err != nil {
		return logFormats.Default()
	}
	return f
}

// SlogLevel maps l onto a slog level.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
