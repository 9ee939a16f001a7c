package build

import "errors"

// Sentinel causes for the failure policy. They are wrapped with context by
// the stages; use errors.Is on the error returned from Run.
var (
	ErrAssetsMissing    = errors.New("asset source directory not found")
	ErrTasksMissing     = errors.New("task directory not found")
	ErrVendorCSSMissing = errors.New("vendored stylesheet not found")
	ErrBrokenLinks      = errors.New("broken links in generated pages")

	// errStageSkipped lets a stage report that it had nothing to do.
	errStageSkipped = errors.New("stage skipped")
)
