package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/docpage/internal/foundation/errors"
	"git.home.luguber.info/inful/docpage/internal/metadata"
	"git.home.luguber.info/inful/docpage/internal/output"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_ResolvesPathsAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docpage.yaml")
	writeFile(t, path, `
metadata:
  path: metadata.json
pages:
  - pages/*.yaml
logging:
  level: WARNING
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "metadata.json"), cfg.Metadata.Path)
	assert.Equal(t, metadata.Format(""), cfg.Metadata.Format)
	assert.Equal(t, []string{filepath.Join(dir, "pages/*.yaml")}, cfg.Pages)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.Output.Directory)
	assert.Equal(t, output.FormatJSON, cfg.Output.Format)
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Equal(t, defaultWatchDebounce, cfg.Watch.Debounce)
	assert.Equal(t, defaultWatchIgnore, cfg.Watch.Ignore)
	assert.Empty(t, cfg.Notify.Subject)
	assert.Equal(t, dir, cfg.Dir())
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docpage.yaml")
	writeFile(t, path, `
metadata:
  path: ${DOCPAGE_TEST_METADATA}
notify:
  nats_url: ${DOCPAGE_TEST_NATS}
watch:
  debounce: 2s
  interval: 1m
`)
	t.Setenv("DOCPAGE_TEST_METADATA", "/data/components.db")
	t.Setenv("DOCPAGE_TEST_NATS", "nats://localhost:4222")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/components.db", cfg.Metadata.Path)
	assert.Equal(t, "nats://localhost:4222", cfg.Notify.NATSURL)
	assert.Equal(t, defaultNotifySubject, cfg.Notify.Subject)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, time.Minute, cfg.Watch.Interval)
}

func TestLoad_DotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "DOCPAGE_TEST_DOTENV=from-file\nDOCPAGE_TEST_KEEP=from-file\n")
	path := filepath.Join(dir, "docpage.yaml")
	writeFile(t, path, "metadata:\n  path: ${DOCPAGE_TEST_DOTENV}/${DOCPAGE_TEST_KEEP}.json\n")

	t.Setenv("DOCPAGE_TEST_KEEP", "from-env")
	// Registered so the variable set by the .env file is cleaned up.
	t.Setenv("DOCPAGE_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("DOCPAGE_TEST_DOTENV"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "from-file", "from-env.json"), cfg.Metadata.Path)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing metadata path", "pages: [a.yaml]\n", "configuration validation failed"},
		{"unknown field", "metadata:\n  path: m.json\nhugo: {}\n", "failed to parse configuration"},
		{"bad log level", "metadata:\n  path: m.json\nlogging:\n  level: loud\n", "invalid configuration value"},
		{"bad output format", "metadata:\n  path: m.json\noutput:\n  format: html\n", "invalid configuration value"},
		{"bad ignore pattern", "metadata:\n  path: m.json\nwatch:\n  ignore: ['[abc']\n", "configuration validation failed"},
		{"subject without url", "metadata:\n  path: m.json\nnotify:\n  subject: pages\n", "configuration validation failed"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.Repeat("c", i+1)+".yaml")
			writeFile(t, path, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestPagePaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pages", "cards.yaml"), "name: cards\n")
	writeFile(t, filepath.Join(dir, "pages", "buttons.yaml"), "name: buttons\n")
	writeFile(t, filepath.Join(dir, "extra", "alerts.yaml"), "name: alerts\n")

	cfg := &Config{Pages: []string{
		filepath.Join(dir, "pages", "*.yaml"),
		filepath.Join(dir, "pages", "cards.yaml"),
		filepath.Join(dir, "extra", "alerts.yaml"),
	}}
	got, err := cfg.PagePaths()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "extra", "alerts.yaml"),
		filepath.Join(dir, "pages", "buttons.yaml"),
		filepath.Join(dir, "pages", "cards.yaml"),
	}, got)

	cfg.Pages = []string{filepath.Join(dir, "missing.yaml")}
	_, err = cfg.PagePaths()
	require.Error(t, err)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docpage.yaml")

	require.NoError(t, Init(path, false))
	err := Init(path, false)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "metadata.json"), cfg.Metadata.Path)
	assert.Equal(t, metadata.FormatJSON, cfg.Metadata.Format)
	assert.Equal(t, defaultWatchDebounce, cfg.Watch.Debounce)
}

func TestNormalizeLogging(t *testing.T) {
	assert.Equal(t, LogLevelDebug, NormalizeLogLevel(" DEBUG "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat("Json"))
	assert.Equal(t, LogFormatText, NormalizeLogFormat(""))
	assert.Equal(t, LogLevelError.SlogLevel().String(), "ERROR")
}
