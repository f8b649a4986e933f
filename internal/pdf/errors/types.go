package errors

import (
	"errors"
	"fmt"
)

// PDFError is a decoding or validation failure with enough context to tell
// the caller which file and page it came from
type PDFError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Path    string    `json:"path,omitempty"`
	Page    int       `json:"page,omitempty"`
	Cause   error     `json:"-"`
}

// ErrorType categorizes PDF failures
type ErrorType int

const (
	ErrorUnknown ErrorType = iota
	ErrorInvalidFile
	ErrorFileTooLarge
	ErrorEncrypted
	ErrorCorrupted
	ErrorNoText
	ErrorPageDecode
)

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.Page > 0 {
		msg = fmt.Sprintf("%s (page %d)", msg, e.Page)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes the underlying library error
func (e *PDFError) Unwrap() error {
	return e.Cause
}

// Is matches another PDFError of the same type, so errors.Is(err,
// &PDFError{Type: ErrorEncrypted}) works without comparing messages
func (e *PDFError) Is(target error) bool {
	t, ok := target.(*PDFError)
	return ok && t.Type == e.Type
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorInvalidFile:
		return "INVALID_FILE"
	case ErrorFileTooLarge:
		return "FILE_TOO_LARGE"
	case ErrorEncrypted:
		return "ENCRYPTED"
	case ErrorCorrupted:
		return "CORRUPTED"
	case ErrorNoText:
		return "NO_TEXT"
	case ErrorPageDecode:
		return "PAGE_DECODE"
	default:
		return "UNKNOWN"
	}
}

// IsRecoverable reports whether processing can continue past this error.
// Only single pages are skipped; anything about the document as a whole
// stops the extraction.
func (et ErrorType) IsRecoverable() bool {
	return et == ErrorPageDecode
}

// New creates a PDFError for path
func New(errorType ErrorType, path, message string) *PDFError {
	return &PDFError{Type: errorType, Message: message, Path: path}
}

// Wrap creates a PDFError around a library error
func Wrap(errorType ErrorType, path, message string, cause error) *PDFError {
	return &PDFError{Type: errorType, Message: message, Path: path, Cause: cause}
}

// WithPage sets the page number the error refers to
func (e *PDFError) WithPage(page int) *PDFError {
	e.Page = page
	return e
}

// TypeOf returns the ErrorType of err, or ErrorUnknown when err is not a
// PDFError
func TypeOf(err error) ErrorType {
	var pe *PDFError
	if errors.As(err, &pe) {
		return pe.Type
	}
	return ErrorUnknown
}

// IsRecoverable reports whether err only affects part of the document
func IsRecoverable(err error) bool {
	return TypeOf(err).IsRecoverable()
}
