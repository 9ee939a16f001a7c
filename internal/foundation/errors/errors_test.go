package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestClassifiedError_Error(t *testing.T) {
	cause := os.ErrNotExist
	err := FileSystemError("asset source directory not found").
		WithContext("path", "public").
		WithCause(cause).
		Build()

	want := "[filesystem:fatal] asset source directory not found: file does not exist"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Error("expected errors.Is to reach the cause")
	}
	if !err.IsFatal() {
		t.Error("FileSystemError should be fatal")
	}
	if p := err.Path(); p != "public" {
		t.Errorf("context path = %q", p)
	}
}

func TestClassifiedError_WithContextDoesNotMutate(t *testing.T) {
	base := BuildError("render failed").Build()
	derived := base.WithContext("file", "01.md")

	if _, ok := base.Context()["file"]; ok {
		t.Error("WithContext mutated the original error")
	}
	if f, _ := derived.Context().String("file"); f != "01.md" {
		t.Errorf("derived context = %q", f)
	}
}

func TestBuilder_BuildSnapshotsState(t *testing.T) {
	b := NewError(CategoryBuild, "copy failed").WithContext("path", "public")
	first := b.Build()
	if first.Path() != "public" {
		t.Fatalf("Path() = %q", first.Path())
	}
	if first.Severity() != SeverityError {
		t.Errorf("default severity = %s", first.Severity())
	}
	if w := RenderError("bad table").Warning().Build(); w.IsFatal() || w.Severity() != SeverityWarning {
		t.Errorf("Warning() severity = %s", w.Severity())
	}
}

func TestAsClassified_ThroughWrapping(t *testing.T) {
	inner := ValidationError("bad delay").Build()
	wrapped := fmt.Errorf("load config: %w", inner)

	ce, ok := AsClassified(wrapped)
	if !ok {
		t.Fatal("expected classified error in chain")
	}
	if ce.Category() != CategoryValidation {
		t.Errorf("category = %s", ce.Category())
	}
	if !HasCategory(wrapped, CategoryValidation) {
		t.Error("HasCategory should see through wrapping")
	}
	if CategoryOf(stderrors.New("plain")) != CategoryInternal {
		t.Error("unclassified errors default to internal")
	}
}

func TestClassifiedError_LogAttrsSorted(t *testing.T) {
	err := FileSystemError("copy failed").WithContext("stage", "copy_assets").WithContext("path", "public").Build()

	var keys []string
	for _, a := range err.LogAttrs() {
		keys = append(keys, a.Key)
	}
	if got := strings.Join(keys, ","); got != "category,severity,path,stage" {
		t.Errorf("attr keys = %s", got)
	}
}

func TestErrorCategory_ExitCode(t *testing.T) {
	for cat, want := range map[ErrorCategory]int{
		CategoryConfig:     ExitUsage,
		CategoryValidation: ExitUsage,
		CategoryNotFound:   ExitFailure,
		CategoryFileSystem: ExitFailure,
		CategoryInternal:   ExitFailure,
	} {
		if got := cat.ExitCode(); got != want {
			t.Errorf("%s.ExitCode() = %d, want %d", cat, got, want)
		}
	}
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation error", err: ValidationError("negative delay").Build(), expected: 2},
		{name: "config error", err: ConfigError("unreadable config").Build(), expected: 2},
		{name: "filesystem error", err: FileSystemError("asset source missing").Build(), expected: 1},
		{name: "wrapped build error", err: fmt.Errorf("stage: %w", BuildError("x").Build()), expected: 1},
		{name: "unclassified error", err: stderrors.New("unknown"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := FileSystemError("asset source directory not found").
		WithContext("path", "public").
		WithCause(os.ErrNotExist).
		Build()

	quiet := NewCLIErrorAdapter(false, nil)
	if got := quiet.FormatError(err); got != "Error: asset source directory not found (public): file does not exist" {
		t.Errorf("quiet FormatError = %q", got)
	}

	verbose := NewCLIErrorAdapter(true, nil)
	if got := verbose.FormatError(err); !strings.Contains(got, "[filesystem:fatal]") {
		t.Errorf("verbose FormatError = %q", got)
	}

	if got := quiet.FormatError(stderrors.New("boom")); got != "Error: boom" {
		t.Errorf("unclassified FormatError = %q", got)
	}
	if quiet.FormatError(nil) != "" {
		t.Error("nil error should format to empty string")
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, stderr bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.stderr = &stderr
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(nil)
	if code != -1 {
		t.Fatal("nil error must not exit")
	}

	adapter.HandleError(FileSystemError("reset failed").WithContext("path", "dist").Build())
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "reset failed") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if !strings.Contains(logs.String(), "category=filesystem") {
		t.Errorf("log output = %q", logs.String())
	}
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var stderr bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil))).WithWriter(&stderr)

	if got := adapter.Report(nil); got != ExitOK {
		t.Fatalf("Report(nil) = %d", got)
	}
	if stderr.Len() != 0 {
		t.Fatalf("nil error printed %q", stderr.String())
	}
	if got := adapter.Report(ValidationError("delay must not be negative").Build()); got != ExitUsage {
		t.Errorf("Report(validation) = %d, want %d", got, ExitUsage)
	}
	if got := stderr.String(); got != "Error: delay must not be negative\n" {
		t.Errorf("stderr = %q", got)
	}
}
