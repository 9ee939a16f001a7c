package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sitebuilder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, time.Duration(0), cfg.Build.Delay)
	require.Equal(t, "GitHub Actions Workshop", cfg.Site.Title)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("WORKSHOP_OUT", "site-out")
	path := writeConfig(t, `
paths:
  assets: static
  output: ${WORKSHOP_OUT}
build:
  delay: 1s
  verify_links: true
watch:
  rebuild_every: 10m
site:
  title: Docs
logging:
  level: DEBUG
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "static", cfg.Paths.Assets)
	require.Equal(t, "tasks", cfg.Paths.Tasks, "unset keys keep defaults")
	require.Equal(t, "site-out", cfg.Paths.Output)
	require.Equal(t, time.Second, cfg.Build.Delay)
	require.True(t, cfg.Build.VerifyLinks)
	require.Equal(t, 10*time.Minute, cfg.Watch.RebuildEvery)
	require.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	require.Equal(t, "Docs", cfg.Site.Title)
	require.Len(t, cfg.Site.Nav, 5)
	require.Equal(t, LogLevelDebug, cfg.Logging.Level)
	require.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestLoad_UnknownKeyIsConfigError(t *testing.T) {
	path := writeConfig(t, "paths:\n  asets: public\n")
	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "paths:\n  output: from-file\nbuild:\n  delay: 2s\n")
	t.Setenv(EnvOutput, "from-env")
	t.Setenv(EnvDelay, "250ms")
	t.Setenv(EnvVerifyLinks, "true")
	t.Setenv(EnvLogFormat, "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Paths.Output)
	require.Equal(t, 250*time.Millisecond, cfg.Build.Delay)
	require.True(t, cfg.Build.VerifyLinks)
	require.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestLoad_InvalidEnvValues(t *testing.T) {
	for _, tc := range []struct{ key, val string }{
		{EnvDelay, "soon"},
		{EnvVerifyLinks, "maybe"},
	} {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := Load("")
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryConfig))
		})
	}
}

func TestInit_WritesLoadableExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultConfigFile)
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestInit_RefusesOverwriteWithoutForce(t *testing.T) {
	path := writeConfig(t, "paths:\n  output: keep\n")

	err := Init(path, false)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
	data, _ := os.ReadFile(path)
	require.Contains(t, string(data), "keep")

	require.NoError(t, Init(path, true))
	data, _ = os.ReadFile(path)
	require.NotContains(t, string(data), "keep")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"negative delay", func(c *Config) { c.Build.Delay = -time.Second }, false},
		{"empty output", func(c *Config) { c.Paths.Output = " " }, false},
		{"empty assets", func(c *Config) { c.Paths.Assets = "" }, false},
		{"output equals assets", func(c *Config) { c.Paths.Output = "public" }, false},
		{"output contains tasks", func(c *Config) { c.Paths.Output = "."; c.Paths.Tasks = "docs/tasks" }, false},
		{"output inside assets", func(c *Config) { c.Paths.Output = "public/dist" }, false},
		{"output inside tasks", func(c *Config) { c.Paths.Output = "tasks/dist" }, true},
		{"sibling with common prefix", func(c *Config) { c.Paths.Output = "pub" }, true},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -1 }, false},
		{"negative rebuild interval", func(c *Config) { c.Watch.RebuildEvery = -time.Minute }, false},
		{"empty css vendor allowed", func(c *Config) { c.Paths.CSSVendor = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryValidation))
		})
	}
}

func TestNormalizeLogging(t *testing.T) {
	require.Equal(t, LogLevelWarn, NormalizeLogLevel(" Warning "))
	require.Equal(t, LogLevelInfo, NormalizeLogLevel("chatty"))
	require.Equal(t, LogFormatJSON, NormalizeLogFormat("JSON"))
	require.Equal(t, LogFormatText, NormalizeLogFormat("xml"))
}

func TestLoggingConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LoggingConfig{Level: LogLevelWarn, Format: LogFormatJSON}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"msg":"shown"`)
	require.Contains(t, buf.String(), `"k":"v"`)
}

func TestMarkdownConfig_RendererOptions(t *testing.T) {
	opts := MarkdownConfig{HeadingIDs: true}.RendererOptions()
	require.True(t, opts.HeadingIDs)
	require.False(t, opts.Alerts)
	require.False(t, opts.UnsafeHTML)
}
