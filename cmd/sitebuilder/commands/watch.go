package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	BuildFlags
	Debounce     string `help:"Quiet period before a rebuild starts (e.g. 500ms)" placeholder:"DURATION"`
	RebuildEvery string `name:"rebuild-every" help:"Also rebuild on a fixed interval (e.g. 10m)" placeholder:"DURATION"`
}

func (w *WatchCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if err := w.applyTo(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	watcher, err := watch.New(watchOptions(cfg), func(ctx context.Context) error {
		_, err := runBuild(ctx, cfg, g.Stdout, g.Stderr)
		return err
	})
	if err != nil {
		return err
	}
	slog.Info("Watching for changes",
		logfields.Path(cfg.Paths.Assets),
		slog.String("tasks", cfg.Paths.Tasks),
		slog.Duration("debounce", cfg.Watch.Debounce))
	return watcher.Run(ctx)
}

func (w *WatchCmd) applyTo(cfg *config.Config) error {
	if err := w.BuildFlags.applyTo(cfg); err != nil {
		return err
	}
	if w.Debounce != "" {
		d, err := parseDuration("--debounce", w.Debounce)
		if err != nil {
			return err
		}
		cfg.Watch.Debounce = d
	}
	if w.RebuildEvery != "" {
		d, err := parseDuration("--rebuild-every", w.RebuildEvery)
		if err != nil {
			return err
		}
		cfg.Watch.RebuildEvery = d
	}
	return nil
}

// watchOptions watches both input trees and the vendored stylesheet while
// ignoring everything the build itself writes.
func watchOptions(cfg *config.Config) watch.Options {
	opts := watch.Options{
		Dirs:         []string{cfg.Paths.Assets, cfg.Paths.Tasks},
		Ignore:       []string{cfg.Paths.Output},
		Debounce:     cfg.Watch.Debounce,
		RebuildEvery: cfg.Watch.RebuildEvery,
	}
	if cfg.Paths.CSSVendor != "" {
		opts.Files = append(opts.Files, cfg.Paths.CSSVendor)
	}
	for _, p := range []string{cfg.Build.Report, cfg.Build.MetricsFile} {
		if p != "" {
			opts.Ignore = append(opts.Ignore, p)
		}
	}
	return opts
}
