package errors

// ErrorCategory groups errors by who has to act on them: the user fixing
// input (config, validation), or the build itself.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"     // unreadable or malformed configuration
	CategoryValidation ErrorCategory = "validation" // well-formed input with unusable values
	CategoryNotFound   ErrorCategory = "not_found"  // optional input absent
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryRender     ErrorCategory = "render"
	CategoryBuild      ErrorCategory = "build"
	CategoryInternal   ErrorCategory = "internal"
)

// ExitCode is the process exit status for a failure of this category.
func (c ErrorCategory) ExitCode() int {
	switch c {
	case CategoryConfig, CategoryValidation:
		return ExitUsage
	default:
		return ExitFailure
	}
}

// ErrorSeverity indicates whether a build can continue past an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
)
