package build

import (
	"fmt"
	"io"
)

// Progress receives the user-facing console lines of a build.
type Progress interface {
	Stage(stage StageName)
	Step(msg string)
	Warn(msg string)
	Done(report *BuildReport)
}

type noProgress struct{}

func (noProgress) Stage(StageName)   {}
func (noProgress) Step(string)       {}
func (noProgress) Warn(string)       {}
func (noProgress) Done(*BuildReport) {}

var stageLabels = map[StageName]string{
	StageResetOutput: "Cleaning output directory...",
	StageCopyAssets:  "Copying static assets...",
	StageVendorCSS:   "Copying GitHub markdown CSS...",
	StageRenderTasks: "Processing markdown files from tasks directory...",
	StageTaskIndex:   "Generating tasks index page...",
	StageVerifyLinks: "Verifying links...",
}

// ConsoleProgress prints progress lines to Out and warnings to Err.
type ConsoleProgress struct {
	Out io.Writer
	Err io.Writer
}

// NewConsoleProgress writes to out and err.
func NewConsoleProgress(out, err io.Writer) *ConsoleProgress {
	return &ConsoleProgress{Out: out, Err: err}
}

func (c *ConsoleProgress) Stage(stage StageName) {
	if label, ok := stageLabels[stage]; ok {
		_, _ = fmt.Fprintln(c.Out, label)
	}
}

func (c *ConsoleProgress) Step(msg string) {
	_, _ = fmt.Fprintf(c.Out, "  ✓ %s\n", msg)
}

func (c *ConsoleProgress) Warn(msg string) {
	_, _ = fmt.Fprintf(c.Err, "Warning: %s\n", msg)
}

func (c *ConsoleProgress) Done(report *BuildReport) {
	switch report.Outcome {
	case OutcomeFailed, OutcomeCanceled:
		return
	case OutcomeWarning:
		_, _ = fmt.Fprintf(c.Out, "Build completed with %d warning(s)\n", len(report.Warnings))
	default:
		_, _ = fmt.Fprintln(c.Out, "Build completed successfully!")
	}
	_, _ = fmt.Fprintf(c.Out, "Output directory: %s\n", report.OutputDir)
	_, _ = fmt.Fprintf(c.Out, "Generated %d task pages\n", report.RenderedPages)
}
