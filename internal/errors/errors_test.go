package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := NewParsingError("bad token", ErrInvalidJSON)
	want := "parsing: bad token: invalid JSON format"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	bare := &AppError{Type: ErrorTypeExport, Message: "cannot write"}
	want = "export: cannot write"
	if bare.Error() != want {
		t.Errorf("expected %q, got %q", want, bare.Error())
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewExtractError("path missing", ErrInvalidPath)
	if !errors.Is(err, ErrInvalidPath) {
		t.Error("expected wrapped sentinel to be reachable via errors.Is")
	}
	if errors.Unwrap(err) != ErrInvalidPath {
		t.Error("expected Unwrap to return the wrapped error")
	}
}

func TestAppError_IsMatchesOnType(t *testing.T) {
	a := NewMergeError("first", nil)
	b := NewMergeError("second", ErrNoJoinKeys)
	if !errors.Is(a, b) {
		t.Error("expected merge errors to match by type")
	}

	c := NewExportError("other", nil)
	if errors.Is(a, c) {
		t.Error("expected errors of different types not to match")
	}
}

func TestUserFriendlyError_AppErrors(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{NewInputError("stdin closed", nil), "Input error: stdin closed"},
		{NewParsingError("bad token", nil), "JSON parsing error: bad token"},
		{NewExtractError("no such path", nil), "Extraction error: no such path"},
		{NewExportError("bad format", nil), "Export error: bad format"},
		{NewMergeError("no keys", nil), "Merge error: no keys"},
		{NewOutputError("cannot write", nil), "Output error: cannot write"},
	}
	for _, tt := range tests {
		if got := UserFriendlyError(tt.err); got != tt.want {
			t.Errorf("UserFriendlyError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestUserFriendlyError_Sentinels(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrEmptyInput, "Error: The input is empty. Please provide valid JSON data."},
		{ErrInvalidJSON, "Error: The input contains invalid JSON. Please check your JSON syntax."},
		{ErrMultipleJSON, "Error: Multiple JSON values found. Please provide a single JSON object or array."},
		{ErrFileNotFound, "Error: The specified file could not be found. Please check the file path."},
		{ErrNoInput, "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."},
		{ErrInvalidPath, "Error: The given path does not exist in the document. Run the schema command to list valid paths."},
		{ErrEmptySelection, "Error: No fields selected. Use --select to choose at least one field path."},
		{ErrDuplicateOutputName, "Error: Two selections map to the same output name. Rename one with path=name."},
		{ErrUnsupportedFormat, "Error: Unsupported output format. Choose csv or json."},
		{ErrNoJoinKeys, "Error: No join keys selected. Use --join-key to pick at least one shared field."},
	}
	for _, tt := range tests {
		if got := UserFriendlyError(tt.err); got != tt.want {
			t.Errorf("UserFriendlyError(%v) = %q, want %q", tt.err, got, tt.want)
		}
		// Wrapped sentinels still resolve to the same message.
		wrapped := fmt.Errorf("context: %w", tt.err)
		if got := UserFriendlyError(wrapped); got != tt.want {
			t.Errorf("UserFriendlyError(wrapped %v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestUserFriendlyError_Unknown(t *testing.T) {
	err := errors.New("something odd")
	if got := UserFriendlyError(err); got != "Error: something odd" {
		t.Errorf("expected generic message, got %q", got)
	}
}
