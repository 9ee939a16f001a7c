package build

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
)

// Sleeper pauses for d or until ctx is done, returning ctx.Err() in that case.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the default Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type options struct {
	renderer  markdown.Renderer
	sleeper   Sleeper
	recorder  metrics.Recorder
	progress  Progress
	observers []BuildObserver
}

// Option customises a Run.
type Option func(*options)

// WithRenderer replaces the goldmark renderer configured from cfg.Markdown.
func WithRenderer(r markdown.Renderer) Option {
	return func(o *options) { o.renderer = r }
}

// WithSleeper replaces the delay implementation.
func WithSleeper(s Sleeper) Option {
	return func(o *options) { o.sleeper = s }
}

// WithRecorder reports stage and build metrics to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithProgress prints user-facing progress lines through p.
func WithProgress(p Progress) Option {
	return func(o *options) { o.progress = p }
}

// WithObserver adds a lifecycle observer.
func WithObserver(obs BuildObserver) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// Run executes one build for cfg. The returned report is non-nil whenever
// the configuration was valid, including failed and canceled builds; the
// error is the fatal (or canceled) stage error, or nil.
func Run(ctx context.Context, cfg *config.Config, opts ...Option) (*BuildReport, error) {
	if cfg == nil {
		return nil, errors.ValidationError("configuration is required").Build()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		sleeper:  ContextSleep,
		recorder: metrics.NoopRecorder{},
		progress: noProgress{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.renderer == nil {
		o.renderer = markdown.NewGFMRenderer(cfg.Markdown.RendererOptions())
	}

	engine, err := templates.New(cfg.Site)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid site templates").Build()
	}

	report := NewBuildReport(cfg.Paths.Output)
	report.SourceRevision = DetectSourceRevision(cfg.Paths.Tasks)

	obs := observers{logObserver{buildID: report.BuildID}, RecorderObserver{Recorder: o.recorder}}
	obs = append(obs, o.observers...)
	obs = append(obs, progressObserver{p: o.progress})

	st := &State{
		Config:   cfg,
		Renderer: o.renderer,
		Engine:   engine,
		Sleep:    o.sleeper,
		Progress: o.progress,
		Observer: obs,
		Report:   report,
	}

	slog.Info("Starting build",
		logfields.BuildID(report.BuildID),
		logfields.Path(cfg.Paths.Assets),
		slog.String("tasks", cfg.Paths.Tasks),
		logfields.Output(cfg.Paths.Output))

	runErr := RunStages(ctx, st, DefaultPipeline(cfg))
	report.Finish()
	report.DeriveOutcome()
	obs.OnBuildComplete(report)

	if path := cfg.Build.Report; path != "" {
		if err := report.Persist(path); err != nil {
			slog.Warn("Failed to write build report", logfields.Path(path), logfields.Error(err))
		}
	}
	return report, runErr
}
