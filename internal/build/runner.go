package build

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// stageOutcome is the normalized result of one stage execution.
type stageOutcome struct {
	Error     *StageError
	Result    StageResult
	IssueCode ReportIssueCode
	Severity  IssueSeverity
	Abort     bool
}

// RunStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage.
func RunStages(ctx context.Context, st *State, stages []StageDef) error {
	for _, def := range stages {
		select {
		case <-ctx.Done():
			se := NewCanceledStageError(def.Name, ctx.Err())
			st.Report.AddIssue(IssueCanceled, def.Name, SeverityError, se)
			st.Report.RecordStageResult(def.Name, StageResultCanceled)
			st.Observer.OnStageComplete(def.Name, 0, StageResultCanceled)
			return se
		default:
		}

		st.Observer.OnStageStart(def.Name)

		t0 := time.Now()
		err := def.Fn(ctx, st)
		dur := time.Since(t0)

		st.Report.StageDurations[string(def.Name)] = dur

		out := classifyStageResult(def.Name, err)
		if out.Error != nil {
			st.Report.AddIssue(out.IssueCode, def.Name, out.Severity, out.Error)
		}
		st.Report.RecordStageResult(def.Name, out.Result)
		st.Observer.OnStageComplete(def.Name, dur, out.Result)

		if out.Abort {
			if out.Error != nil {
				return out.Error
			}
			return fmt.Errorf("stage %s aborted", def.Name)
		}
	}
	return nil
}

// classifyStageResult converts the raw error from a stage into a stageOutcome.
// Errors that are not StageErrors are treated as fatal.
func classifyStageResult(stage StageName, err error) stageOutcome {
	if err == nil {
		return stageOutcome{Result: StageResultSuccess}
	}
	if errors.Is(err, errStageSkipped) {
		return stageOutcome{Result: StageResultSkipped}
	}

	var se *StageError
	if !errors.As(err, &se) {
		se = NewFatalStageError(stage, err)
	}

	switch se.Kind {
	case StageErrorCanceled:
		return stageOutcome{Error: se, Result: StageResultCanceled, IssueCode: IssueCanceled, Severity: SeverityError, Abort: true}
	case StageErrorWarning:
		return stageOutcome{Error: se, Result: StageResultWarning, IssueCode: issueCodeFor(se), Severity: SeverityWarning}
	default:
		return stageOutcome{Error: se, Result: StageResultFatal, IssueCode: issueCodeFor(se), Severity: SeverityError, Abort: true}
	}
}

func issueCodeFor(se *StageError) ReportIssueCode {
	switch {
	case errors.Is(se, ErrAssetsMissing):
		return IssueAssetsMissing
	case errors.Is(se, ErrTasksMissing):
		return IssueTasksMissing
	case errors.Is(se, ErrVendorCSSMissing):
		return IssueVendorCSSMissing
	case errors.Is(se, ErrBrokenLinks):
		return IssueBrokenLinks
	}
	switch se.Stage {
	case StageResetOutput:
		return IssueResetFailed
	case StageCopyAssets:
		return IssueCopyFailed
	case StageRenderTasks, StageTaskIndex:
		return IssueRenderFailure
	default:
		return IssueGenericStageError
	}
}
