package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput          = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON         = errors.New("invalid JSON format")
	ErrMultipleJSON        = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound        = errors.New("file not found")
	ErrFileEmpty           = errors.New("file is empty")
	ErrNoInput             = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath     = errors.New("invalid file path")
	ErrInvalidPath         = errors.New("path does not resolve within the document")
	ErrEmptySelection      = errors.New("no fields selected")
	ErrDuplicateOutputName = errors.New("duplicate output name")
	ErrUnsupportedFormat   = errors.New("unsupported output format")
	ErrNoJoinKeys          = errors.New("no join keys selected")
	ErrNoRecords           = errors.New("no iterable records under the selected root path")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput   ErrorType = "input"
	ErrorTypeParsing ErrorType = "parsing"
	ErrorTypeExtract ErrorType = "extract"
	ErrorTypeExport  ErrorType = "export"
	ErrorTypeMerge   ErrorType = "merge"
	ErrorTypeOutput  ErrorType = "output"
	ErrorTypeUnknown ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewExtractError creates a new error related to path resolution and extraction
func NewExtractError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExtract,
		Message: message,
		Err:     err,
	}
}

// NewExportError creates a new error related to serializing records
func NewExportError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExport,
		Message: message,
		Err:     err,
	}
}

// NewMergeError creates a new error related to dataset merging
func NewMergeError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeMerge,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeExtract:
			return fmt.Sprintf("Extraction error: %s", appErr.Message)
		case ErrorTypeExport:
			return fmt.Sprintf("Export error: %s", appErr.Message)
		case ErrorTypeMerge:
			return fmt.Sprintf("Merge error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON object or array."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	}
	if errors.Is(err, ErrInvalidPath) {
		return "Error: The given path does not exist in the document. Run the schema command to list valid paths."
	}
	if errors.Is(err, ErrEmptySelection) {
		return "Error: No fields selected. Use --select to choose at least one field path."
	}
	if errors.Is(err, ErrDuplicateOutputName) {
		return "Error: Two selections map to the same output name. Rename one with path=name."
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		return "Error: Unsupported output format. Choose csv or json."
	}
	if errors.Is(err, ErrNoJoinKeys) {
		return "Error: No join keys selected. Use --join-key to pick at least one shared field."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
