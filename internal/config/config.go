// Package config loads the build configuration record: defaults, an optional
// YAML file, .env files and SITEBUILDER_* environment overrides. Command-line
// flags are applied by the CLI on top of the loaded record before Validate.
package config

import (
	"bytes"
	stdErrors "errors"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
)

// DefaultConfigFile is the file looked up when -c is not given.
const DefaultConfigFile = "sitebuilder.yaml"

// Config is the explicit configuration record handed to the build.
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Build    BuildConfig    `yaml:"build"`
	Watch    WatchConfig    `yaml:"watch"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Site     templates.Site `yaml:"site"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PathsConfig locates the build inputs and the output tree.
type PathsConfig struct {
	Assets    string `yaml:"assets"`     // static asset tree mirrored into the output root
	Tasks     string `yaml:"tasks"`      // flat directory of *.md task documents
	Output    string `yaml:"output"`     // wiped and regenerated on every build
	CSSVendor string `yaml:"css_vendor"` // empty disables the stylesheet copy
}

// BuildConfig tunes a single build.
type BuildConfig struct {
	Delay       time.Duration `yaml:"delay"`        // pause before processing task documents
	Report      string        `yaml:"report"`       // optional JSON build report path
	MetricsFile string        `yaml:"metrics_file"` // optional Prometheus textfile path
	VerifyLinks bool          `yaml:"verify_links"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce     time.Duration `yaml:"debounce"`
	RebuildEvery time.Duration `yaml:"rebuild_every"` // 0 disables periodic rebuilds
}

// MarkdownConfig toggles the GitHub-flavored renderer features.
type MarkdownConfig struct {
	HeadingIDs bool `yaml:"heading_ids"`
	Alerts     bool `yaml:"alerts"`
	UnsafeHTML bool `yaml:"unsafe_html"`
}

// RendererOptions converts the record to renderer options.
func (m MarkdownConfig) RendererOptions() markdown.Options {
	return markdown.Options{HeadingIDs: m.HeadingIDs, Alerts: m.Alerts, UnsafeHTML: m.UnsafeHTML}
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Default returns the workshop defaults.
func Default() *Config {
	md := markdown.DefaultOptions()
	return &Config{
		Paths: PathsConfig{
			Assets:    "public",
			Tasks:     "tasks",
			Output:    "dist",
			CSSVendor: "node_modules/github-markdown-css/github-markdown-light.css",
		},
		Watch: WatchConfig{Debounce: 500 * time.Millisecond},
		Markdown: MarkdownConfig{
			HeadingIDs: md.HeadingIDs,
			Alerts:     md.Alerts,
			UnsafeHTML: md.UnsafeHTML,
		},
		Site:    templates.DefaultSite(),
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}
}

// Load builds the configuration record from defaults, the YAML file at path,
// .env files and the environment. A missing file leaves the defaults in place.
// The result is not validated; callers apply flag overrides first.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(data, cfg); err != nil {
				return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").
					WithContext("path", path).
					Build()
			}
		case stdErrors.Is(err, os.ErrNotExist):
		default:
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read configuration").
				WithContext("path", path).
				Build()
		}
	}

	if err := applyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return cfg, nil
}

// decode expands ${VAR} references and unmarshals onto cfg, rejecting unknown keys.
func decode(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stdErrors.Is(err, io.EOF) {
		return err
	}
	return nil
}
