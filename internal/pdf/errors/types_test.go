package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPDFErrorMessage(t *testing.T) {
	err := New(ErrorFileTooLarge, "/tmp/a.pdf", "file too large")
	assert.Equal(t, "[FILE_TOO_LARGE] file too large: /tmp/a.pdf", err.Error())

	pageErr := Wrap(ErrorPageDecode, "/tmp/a.pdf", "cannot read content", io.ErrUnexpectedEOF).WithPage(3)
	assert.Equal(t, "[PAGE_DECODE] cannot read content (page 3): /tmp/a.pdf: unexpected EOF", pageErr.Error())
}

func TestWrapKeepsCause(t *testing.T) {
	err := fmt.Errorf("decode: %w", Wrap(ErrorCorrupted, "x.pdf", "bad xref", io.ErrUnexpectedEOF))

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, &PDFError{Type: ErrorCorrupted})
	assert.NotErrorIs(t, err, &PDFError{Type: ErrorEncrypted})
	assert.Equal(t, ErrorCorrupted, TypeOf(err))
}

func TestTypeOfPlainError(t *testing.T) {
	assert.Equal(t, ErrorUnknown, TypeOf(errors.New("boom")))
	assert.Equal(t, ErrorUnknown, TypeOf(nil))
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      bool
	}{
		{ErrorPageDecode, true},
		{ErrorInvalidFile, false},
		{ErrorFileTooLarge, false},
		{ErrorEncrypted, false},
		{ErrorCorrupted, false},
		{ErrorNoText, false},
		{ErrorUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.errorType.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.errorType.IsRecoverable())
			assert.Equal(t, tt.want, IsRecoverable(New(tt.errorType, "", "x")))
		})
	}
}
