package build

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// BuildObserver receives callbacks around stage execution and build lifecycle.
type BuildObserver interface {
	OnStageStart(stage StageName)
	OnStageComplete(stage StageName, duration time.Duration, result StageResult)
	OnBuildComplete(report *BuildReport)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(StageName)                                {}
func (NoopObserver) OnStageComplete(StageName, time.Duration, StageResult) {}
func (NoopObserver) OnBuildComplete(*BuildReport)                          {}

// RecorderObserver adapts metrics.Recorder into a BuildObserver.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (r RecorderObserver) OnStageStart(StageName) {}

func (r RecorderObserver) OnStageComplete(stage StageName, d time.Duration, res StageResult) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveStageDuration(string(stage), d)
	r.Recorder.IncStageResult(string(stage), metrics.ResultLabel(res))
}

func (r RecorderObserver) OnBuildComplete(report *BuildReport) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveBuildDuration(report.Duration())
	r.Recorder.IncBuildOutcome(string(report.Outcome))
	r.Recorder.SetRenderedPages(report.RenderedPages)
	r.Recorder.SetCopiedFiles(report.CopiedFiles)
	r.Recorder.SetBrokenLinks(len(report.BrokenLinks))
}

// logObserver writes structured stage logs.
type logObserver struct{ buildID string }

func (l logObserver) OnStageStart(stage StageName) {
	slog.Debug("Stage started", logfields.BuildID(l.buildID), logfields.Stage(string(stage)))
}

func (l logObserver) OnStageComplete(stage StageName, d time.Duration, res StageResult) {
	slog.Debug("Stage completed",
		logfields.BuildID(l.buildID),
		logfields.Stage(string(stage)),
		logfields.Result(string(res)),
		logfields.DurationMS(float64(d.Microseconds())/1000))
}

func (l logObserver) OnBuildComplete(report *BuildReport) {
	attrs := []any{
		logfields.BuildID(l.buildID),
		logfields.Outcome(string(report.Outcome)),
		logfields.Pages(report.RenderedPages),
		logfields.Output(report.OutputDir),
		logfields.DurationMS(float64(report.Duration().Microseconds()) / 1000),
	}
	switch report.Outcome {
	case OutcomeFailed, OutcomeCanceled:
		slog.Error("Build finished", attrs...)
	case OutcomeWarning:
		slog.Warn("Build finished", attrs...)
	default:
		slog.Info("Build finished", attrs...)
	}
}

// progressObserver announces each stage on the console.
type progressObserver struct{ p Progress }

func (o progressObserver) OnStageStart(stage StageName)                          { o.p.Stage(stage) }
func (o progressObserver) OnStageComplete(StageName, time.Duration, StageResult) {}
func (o progressObserver) OnBuildComplete(report *BuildReport)                   { o.p.Done(report) }

// observers fans callbacks out in order.
type observers []BuildObserver

func (m observers) OnStageStart(stage StageName) {
	for _, o := range m {
		o.OnStageStart(stage)
	}
}

func (m observers) OnStageComplete(stage StageName, d time.Duration, res StageResult) {
	for _, o := range m {
		o.OnStageComplete(stage, d, res)
	}
}

func (m observers) OnBuildComplete(report *BuildReport) {
	for _, o := range m {
		o.OnBuildComplete(report)
	}
}
