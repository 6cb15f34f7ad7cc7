package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := New(CategoryParse, CodeInvalidFormat, "bad row")
	if err.Error() != "bad row" {
		t.Errorf("Error() = %q", err.Error())
	}

	err = err.WithSuggestion("fix the row")
	if !strings.Contains(err.Error(), "suggestion: fix the row") {
		t.Errorf("Error() = %q, want suggestion appended", err.Error())
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CategoryFile, CodeFileNotFound, "x") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(cause, CategoryExport, CodeWriteFailed, "write failed")
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     int
	}{
		{CategoryFile, 2},
		{CategoryParse, 3},
		{CategorySchema, 3},
		{CategoryCoercion, 3},
		{CategoryConfig, 4},
		{CategoryProcessing, 5},
		{CategoryExport, 5},
		{CategoryInternal, 5},
	}

	for _, tt := range tests {
		err := New(tt.category, CodeUnexpectedError, "test")
		if got := err.GetExitCode(); got != tt.want {
			t.Errorf("GetExitCode(%s) = %d, want %d", tt.category, got, tt.want)
		}
	}
}

func TestIsFatal(t *testing.T) {
	if CoercionWarning(CodeCoercionFallback, "DEUDA", 3, "abc").IsFatal() {
		t.Error("coercion fallback should be non-fatal")
	}
	if EmptyResultWarning("filter").IsFatal() {
		t.Error("empty result should be non-fatal")
	}
	if !SchemaError("debt", []string{"DEUDA"}, []string{"X"}).IsFatal() {
		t.Error("schema error should be fatal")
	}
}

func TestSchemaErrorContext(t *testing.T) {
	err := SchemaError("payments",
		[]string{"IMPORTE", "CODIGO"},
		[]string{"NOMBRE", "FECHA"})

	if err.Code != CodeMissingColumn {
		t.Errorf("code = %s", err.Code)
	}
	if !strings.Contains(err.Message, "IMPORTE, CODIGO") {
		t.Errorf("message should list every missing column: %q", err.Message)
	}
	if !strings.Contains(err.Suggestion, "NOMBRE, FECHA") {
		t.Errorf("suggestion should list detected columns: %q", err.Suggestion)
	}

	missing, ok := err.Context["missing_columns"].([]string)
	if !ok || len(missing) != 2 {
		t.Errorf("missing_columns context = %v", err.Context["missing_columns"])
	}
}

func TestFileErrorMessages(t *testing.T) {
	err := FileError(CodeFileNotFound, "/tmp/missing.csv", nil)
	if err.Category != CategoryFile {
		t.Errorf("category = %s", err.Category)
	}
	if err.Context["file_path"] != "/tmp/missing.csv" {
		t.Error("expected file_path context")
	}

	err = FileError(CodeUnsupportedExt, "data.json", nil)
	if !strings.Contains(err.Message, "unsupported file type") {
		t.Errorf("message = %q", err.Message)
	}
}

func TestAsReconcilerError(t *testing.T) {
	plain := fmt.Errorf("plain error")
	if _, ok := AsReconcilerError(plain); ok {
		t.Error("plain error should not convert")
	}
	if IsReconcilerError(plain) {
		t.Error("plain error misidentified")
	}

	rich := New(CategoryInternal, CodeUnexpectedError, "boom")
	got, ok := AsReconcilerError(rich)
	if !ok || got != rich {
		t.Error("ReconcilerError should convert to itself")
	}

	// Wrapped via %w still converts
	wrapped := fmt.Errorf("outer: %w", rich)
	if _, ok := AsReconcilerError(wrapped); !ok {
		t.Error("wrapped ReconcilerError should convert")
	}
}

func TestWrapIfNeeded(t *testing.T) {
	rich := New(CategoryParse, CodeInvalidFormat, "already typed")
	if WrapIfNeeded(rich, CategoryInternal, CodeUnexpectedError, "x") != rich {
		t.Error("typed errors must pass through unchanged")
	}

	plain := fmt.Errorf("plain")
	wrapped := WrapIfNeeded(plain, CategoryInternal, CodeUnexpectedError, "wrapped")
	if wrapped.Category != CategoryInternal || wrapped.Cause != plain {
		t.Error("plain errors should wrap")
	}
}

func TestWithContextChaining(t *testing.T) {
	err := New(CategoryExport, CodeWriteFailed, "write failed").
		WithContext("path", "/tmp/out.xlsx").
		WithContext("records", 42)

	if err.Context["path"] != "/tmp/out.xlsx" {
		t.Error("expected path context")
	}
	if err.Context["records"] != 42 {
		t.Error("expected records context")
	}
}
