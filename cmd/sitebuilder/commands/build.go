package commands

import (
	"context"
	"io"
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	BuildFlags
}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if err := b.applyTo(cfg); err != nil {
		return err
	}
	_, err = runBuild(ctx, cfg, g.Stdout, g.Stderr)
	return err
}

// runBuild performs one build with console progress and, when configured,
// a Prometheus textfile written after the build.
func runBuild(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) (*build.BuildReport, error) {
	opts := []build.Option{build.WithProgress(build.NewConsoleProgress(stdout, stderr))}

	var rec *metrics.PrometheusRecorder
	if cfg.Build.MetricsFile != "" {
		rec = metrics.NewPrometheusRecorder(nil)
		opts = append(opts, build.WithRecorder(rec))
	}

	report, err := build.Run(ctx, cfg, opts...)

	if rec != nil && report != nil {
		if werr := rec.WriteTextfile(cfg.Build.MetricsFile); werr != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(cfg.Build.MetricsFile), logfields.Error(werr))
		}
	}
	if report != nil {
		slog.Info("Build finished", logfields.BuildID(report.BuildID), logfields.Outcome(string(report.Outcome)), slog.String("summary", report.Summary()))
	}
	return report, err
}
