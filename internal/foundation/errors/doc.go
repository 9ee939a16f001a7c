// Package errors provides foundational, type-safe error primitives used across SiteBuilder.
//
// This package contains classified error types and helpers for error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, filesystem, build, render, ...)
//   - ErrorSeverity: Impact level (fatal, error, warning)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes (via ErrorCategory.ExitCode) and user-facing formatting
//
// Example usage:
//
//	err := errors.FileSystemError("asset source directory not found").
//		WithContext("path", assetDir).
//		WithCause(statErr).
//		Build()
package errors
