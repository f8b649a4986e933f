package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/mcp-order-reader/internal/pdf/errors"
	"github.com/a3tai/mcp-order-reader/internal/pdf/pdftest"
)

func TestValidator_ValidateFile(t *testing.T) {
	dir := t.TempDir()
	valid := pdftest.WriteFile(t, dir, "order.pdf", pdftest.OrderPage(), pdftest.OrderPage())

	empty := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o644))

	broken := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(broken, []byte("%PDF-1.4\nnot really"), 0o644))

	tests := []struct {
		name      string
		path      string
		wantValid bool
		wantPages int
	}{
		{name: "valid order", path: valid, wantValid: true, wantPages: 2},
		{name: "empty path", path: ""},
		{name: "missing file", path: filepath.Join(dir, "missing.pdf")},
		{name: "empty file", path: empty},
		{name: "wrong extension", path: text},
		{name: "directory", path: dir},
		{name: "broken structure", path: broken},
	}

	validator := NewValidator(1 << 20)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.ValidateFile(tt.path)
			require.NotNil(t, result)

			assert.Equal(t, tt.path, result.Path)
			assert.Equal(t, tt.wantValid, result.Valid)
			assert.Equal(t, tt.wantPages, result.Pages)
			if tt.wantValid {
				assert.Empty(t, result.Message)
				assert.Positive(t, result.Size)
			} else {
				assert.NotEmpty(t, result.Message)
			}
		})
	}
}

func TestValidator_Check(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.WriteFile(t, dir, "order.pdf", pdftest.OrderPage())

	pages, err := NewValidator(1 << 20).Check(path)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)

	_, err = NewValidator(10).Check(path)
	assert.Equal(t, pdferrors.ErrorFileTooLarge, pdferrors.TypeOf(err))
}

func TestValidator_CheckBytes(t *testing.T) {
	v := NewValidator(1 << 20)

	pages, err := v.CheckBytes(pdftest.Build(pdftest.OrderPage()))
	require.NoError(t, err)
	assert.Equal(t, 1, pages)

	_, err = v.CheckBytes(nil)
	assert.Equal(t, pdferrors.ErrorInvalidFile, pdferrors.TypeOf(err))

	_, err = v.CheckBytes([]byte("%PDF-1.7 nothing else"))
	assert.Equal(t, pdferrors.ErrorCorrupted, pdferrors.TypeOf(err))
}
