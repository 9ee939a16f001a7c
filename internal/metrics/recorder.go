package metrics

import "time"

// ResultLabel is the "result" label value of the stage results counter.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
	ResultSkipped  ResultLabel = "skipped" // stage disabled or had no input
)

// Recorder receives per-stage and per-build measurements. Gauges describe the
// most recent build only.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string)
	SetRenderedPages(n int)
	SetCopiedFiles(n int)
	SetBrokenLinks(n int)
}

// NoopRecorder discards everything; builds use it unless a recorder is supplied.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) SetRenderedPages(int)                       {}
func (NoopRecorder) SetCopiedFiles(int)                         {}
func (NoopRecorder) SetBrokenLinks(int)                         {}
