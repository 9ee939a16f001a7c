package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/fsutil"
	"git.home.luguber.info/inful/sitebuilder/internal/linkverify"
	"git.home.luguber.info/inful/sitebuilder/internal/tasks"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// ReportIssueCode enumerates machine-parseable issue identifiers.
type ReportIssueCode string

const (
	IssueResetFailed       ReportIssueCode = "RESET_FAILED"
	IssueAssetsMissing     ReportIssueCode = "ASSETS_MISSING"
	IssueCopyFailed        ReportIssueCode = "COPY_FAILED"
	IssueVendorCSSMissing  ReportIssueCode = "VENDOR_CSS_MISSING"
	IssueTasksMissing      ReportIssueCode = "TASKS_MISSING"
	IssueRenderFailure     ReportIssueCode = "RENDER_FAILURE"
	IssueBrokenLinks       ReportIssueCode = "BROKEN_LINKS"
	IssueCanceled          ReportIssueCode = "BUILD_CANCELED"
	IssueGenericStageError ReportIssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is a structured entry describing a discrete problem encountered.
type ReportIssue struct {
	Code     ReportIssueCode `json:"code"`
	Stage    StageName       `json:"stage"`
	Severity IssueSeverity   `json:"severity"`
	Message  string          `json:"message"`
}

// BuildReport captures what a single build did.
type BuildReport struct {
	SchemaVersion  int
	BuildID        string
	Version        string
	SourceRevision string // HEAD of the repository holding the sources, if any
	OutputDir      string
	Start          time.Time
	End            time.Time
	Errors         []error // fatal errors causing build abortion (at most one)
	Warnings       []error
	Issues         []ReportIssue
	StageDurations map[string]time.Duration
	StageResults   map[StageName]StageResult
	CopiedFiles    int
	VendoredCSS    bool
	RenderedPages  int
	Pages          []tasks.IndexEntry // rendered pages in index order
	IndexWritten   bool
	BrokenLinks    []linkverify.BrokenLink
	Outcome        BuildOutcome
}

// NewBuildReport starts a report for a build writing to outputDir.
func NewBuildReport(outputDir string) *BuildReport {
	return &BuildReport{
		SchemaVersion:  1,
		BuildID:        uuid.NewString(),
		Version:        version.Version,
		OutputDir:      outputDir,
		Start:          time.Now(),
		StageDurations: make(map[string]time.Duration),
		StageResults:   make(map[StageName]StageResult),
	}
}

// AddIssue appends a structured issue and mirrors severity into Errors/Warnings.
func (r *BuildReport) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, err error) {
	r.Issues = append(r.Issues, ReportIssue{Code: code, Stage: stage, Severity: severity, Message: err.Error()})
	switch severity {
	case SeverityError:
		r.Errors = append(r.Errors, err)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, err)
	}
}

// RecordStageResult stores the outcome of a stage.
func (r *BuildReport) RecordStageResult(stage StageName, res StageResult) {
	if r.StageResults == nil {
		r.StageResults = make(map[StageName]StageResult)
	}
	r.StageResults[stage] = res
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish() { r.End = time.Now() }

// Duration is the wall time between Start and End.
func (r *BuildReport) Duration() time.Duration { return r.End.Sub(r.Start) }

// DeriveOutcome sets the Outcome field based on recorded errors/warnings.
func (r *BuildReport) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("pages=%d assets=%d duration=%s errors=%d warnings=%d stages=%d outcome=%s",
		r.RenderedPages, r.CopiedFiles, r.Duration().Truncate(time.Millisecond),
		len(r.Errors), len(r.Warnings), len(r.StageDurations), string(r.Outcome))
}

// Persist writes the report as JSON to path, atomically.
func (r *BuildReport) Persist(path string) error {
	if r.End.IsZero() {
		r.Finish()
		r.DeriveOutcome()
	}
	jb, err := json.MarshalIndent(r.SanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, append(jb, '\n')); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// SanitizedCopy converts errors to strings for JSON output.
func (r *BuildReport) SanitizedCopy() *BuildReportSerializable {
	stageResults := make(map[string]string, len(r.StageResults))
	for k, v := range r.StageResults {
		stageResults[string(k)] = string(v)
	}
	durations := make(map[string]int64, len(r.StageDurations))
	for k, v := range r.StageDurations {
		durations[k] = v.Milliseconds()
	}
	issues := r.Issues
	if issues == nil {
		issues = []ReportIssue{}
	}

	s := &BuildReportSerializable{
		SchemaVersion:    r.SchemaVersion,
		BuildID:          r.BuildID,
		Version:          r.Version,
		SourceRevision:   r.SourceRevision,
		OutputDir:        r.OutputDir,
		Start:            r.Start,
		End:              r.End,
		Errors:           make([]string, len(r.Errors)),
		Warnings:         make([]string, len(r.Warnings)),
		Issues:           issues,
		StageDurationsMS: durations,
		StageResults:     stageResults,
		CopiedFiles:      r.CopiedFiles,
		VendoredCSS:      r.VendoredCSS,
		RenderedPages:    r.RenderedPages,
		IndexWritten:     r.IndexWritten,
		BrokenLinks:      r.BrokenLinks,
		Outcome:          string(r.Outcome),
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	for _, p := range r.Pages {
		s.Pages = append(s.Pages, ReportPage{
			Source: p.OriginalFile,
			Page:   p.Href(),
			Title:  p.Title,
			Label:  p.DisplayTitle(),
		})
	}
	return s
}

// ReportPage is one rendered page in the JSON report.
type ReportPage struct {
	Source string `json:"source"`
	Page   string `json:"page"`
	Title  string `json:"title"`
	Label  string `json:"label"`
}

// BuildReportSerializable mirrors BuildReport with string errors for JSON output.
type BuildReportSerializable struct {
	SchemaVersion    int                     `json:"schema_version"`
	BuildID          string                  `json:"build_id"`
	Version          string                  `json:"version"`
	SourceRevision   string                  `json:"source_revision,omitempty"`
	OutputDir        string                  `json:"output_dir"`
	Start            time.Time               `json:"start"`
	End              time.Time               `json:"end"`
	Errors           []string                `json:"errors"`
	Warnings         []string                `json:"warnings"`
	Issues           []ReportIssue           `json:"issues"`
	StageDurationsMS map[string]int64        `json:"stage_durations_ms"`
	StageResults     map[string]string       `json:"stage_results"`
	CopiedFiles      int                     `json:"copied_files"`
	VendoredCSS      bool                    `json:"vendored_css"`
	RenderedPages    int                     `json:"rendered_pages"`
	Pages            []ReportPage            `json:"pages,omitempty"`
	IndexWritten     bool                    `json:"index_written"`
	BrokenLinks      []linkverify.BrokenLink `json:"broken_links,omitempty"`
	Outcome          string                  `json:"outcome"`
}
