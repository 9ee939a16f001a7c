package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Global carries process-wide state into commands.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config      string           `short:"c" help:"Configuration file path" default:"sitebuilder.yaml"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	LogFormat   string           `name:"log-format" help:"Log output format (text|json)" placeholder:"FORMAT"`
	ShowVersion kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" default:"withargs" help:"Build the static site (default command)"`
	Watch   WatchCmd   `cmd:"" help:"Build, then rebuild whenever assets or tasks change"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// AfterApply runs after flag parsing; installs a bootstrap logger until the
// configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	c.setupLogging(g, config.LoggingConfig{Level: config.LogLevelInfo, Format: config.LogFormatText})
	return nil
}

// setupLogging builds the logger from lc with the command-line overrides applied.
func (c *CLI) setupLogging(g *Global, lc config.LoggingConfig) {
	if c.Verbose {
		lc.Level = config.LogLevelDebug
	}
	if c.LogFormat != "" {
		lc.Format = config.NormalizeLogFormat(c.LogFormat)
	}
	g.Logger = lc.NewLogger(g.Stderr)
	slog.SetDefault(g.Logger)
}

// loadConfig loads the configuration file and environment, then re-applies logging.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	c.setupLogging(g, cfg.Logging)
	slog.Debug("Configuration loaded", slog.String("config", c.Config))
	return cfg, nil
}

// BuildFlags are shared by build and watch. Empty values leave the loaded configuration untouched.
type BuildFlags struct {
	Assets      string `help:"Static asset directory mirrored into the output" placeholder:"DIR"`
	Tasks       string `help:"Directory of task Markdown documents" placeholder:"DIR"`
	Output      string `short:"o" help:"Output directory (wiped on every build)" placeholder:"DIR"`
	CSSVendor   string `name:"css-vendor" help:"Stylesheet copied to css/github-markdown.css" placeholder:"FILE"`
	NoCSSVendor bool   `name:"no-css-vendor" help:"Skip the vendored stylesheet"`
	Delay       string `help:"Pause before processing task documents (e.g. 1s)" placeholder:"DURATION"`
	Report      string `help:"Write a JSON build report to this file" placeholder:"FILE"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format" placeholder:"FILE"`
	VerifyLinks bool   `name:"verify-links" help:"Warn about relative links to missing files"`
}

// applyTo overlays the flags on cfg.
func (f *BuildFlags) applyTo(cfg *config.Config) error {
	for _, o := range []struct {
		val string
		dst *string
	}{
		{f.Assets, &cfg.Paths.Assets},
		{f.Tasks, &cfg.Paths.Tasks},
		{f.Output, &cfg.Paths.Output},
		{f.CSSVendor, &cfg.Paths.CSSVendor},
		{f.Report, &cfg.Build.Report},
		{f.MetricsFile, &cfg.Build.MetricsFile},
	} {
		if o.val != "" {
			*o.dst = o.val
		}
	}
	if f.NoCSSVendor {
		cfg.Paths.CSSVendor = ""
	}
	if f.VerifyLinks {
		cfg.Build.VerifyLinks = true
	}
	if f.Delay != "" {
		d, err := parseDuration("--delay", f.Delay)
		if err != nil {
			return err
		}
		cfg.Build.Delay = d
	}
	return nil
}

// parseDuration accepts Go durations and bare integers (milliseconds).
func parseDuration(flag, raw string) (time.Duration, error) {
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.WrapError(err, errors.CategoryValidation, fmt.Sprintf("invalid %s value %q", flag, raw)).Build()
	}
	return d, nil
}
