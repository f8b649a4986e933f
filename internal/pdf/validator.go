package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	pdferrors "github.com/a3tai/mcp-order-reader/internal/pdf/errors"
)

// Validator checks that a file is a readable, unencrypted PDF before any
// text is decoded from it
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile reports whether path is an order PDF this server can read.
// Validation failures are part of the result, not errors.
func (v *Validator) ValidateFile(path string) *ValidationResult {
	result := &ValidationResult{Path: path}

	info, err := v.checkPath(path)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	result.Size = info.Size()

	f, err := os.Open(path)
	if err != nil {
		result.Message = pdferrors.Wrap(pdferrors.ErrorInvalidFile, path, "cannot open file", err).Error()
		return result
	}
	defer f.Close()

	pages, err := v.checkStructure(path, f)
	if err != nil {
		result.Message = err.Error()
		result.Encrypted = pdferrors.TypeOf(err) == pdferrors.ErrorEncrypted
		return result
	}

	result.Valid = true
	result.Pages = pages
	return result
}

// Check validates the file at path and returns its page count
func (v *Validator) Check(path string) (int, error) {
	if _, err := v.checkPath(path); err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, pdferrors.Wrap(pdferrors.ErrorInvalidFile, path, "cannot open file", err)
	}
	defer f.Close()

	return v.checkStructure(path, f)
}

// CheckBytes validates an in-memory PDF and returns its page count
func (v *Validator) CheckBytes(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, pdferrors.New(pdferrors.ErrorInvalidFile, "", "file is empty")
	}
	if v.maxFileSize > 0 && int64(len(data)) > v.maxFileSize {
		return 0, pdferrors.New(pdferrors.ErrorFileTooLarge, "",
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", len(data), v.maxFileSize))
	}
	return v.checkStructure("", bytes.NewReader(data))
}

// CheckInfo performs the cheap checks that need no file access
func (v *Validator) CheckInfo(path string, info os.FileInfo) error {
	if info.IsDir() {
		return pdferrors.New(pdferrors.ErrorInvalidFile, path, "path is a directory, not a file")
	}
	if !isPDFName(path) {
		return pdferrors.New(pdferrors.ErrorInvalidFile, path, "file is not a PDF")
	}
	if info.Size() == 0 {
		return pdferrors.New(pdferrors.ErrorInvalidFile, path, "file is empty")
	}
	if v.maxFileSize > 0 && info.Size() > v.maxFileSize {
		return pdferrors.New(pdferrors.ErrorFileTooLarge, path,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", info.Size(), v.maxFileSize))
	}
	return nil
}

func (v *Validator) checkPath(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, pdferrors.New(pdferrors.ErrorInvalidFile, path, "path cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, pdferrors.New(pdferrors.ErrorInvalidFile, path, "file does not exist")
	}
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorInvalidFile, path, "cannot access file", err)
	}

	if err := v.CheckInfo(path, info); err != nil {
		return nil, err
	}
	return info, nil
}

// checkStructure reads the cross-reference table and page tree with pdfcpu
// in relaxed mode and rejects encrypted documents
func (v *Validator) checkStructure(path string, rs io.ReadSeeker) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = pdferrors.New(pdferrors.ErrorCorrupted, path, fmt.Sprintf("validator panic: %v", r))
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		if isEncryptionError(err) {
			return 0, pdferrors.Wrap(pdferrors.ErrorEncrypted, path, "document is encrypted", err)
		}
		return 0, pdferrors.Wrap(pdferrors.ErrorCorrupted, path, "failed to read PDF structure", err)
	}

	if ctx.Encrypt != nil {
		return 0, pdferrors.New(pdferrors.ErrorEncrypted, path, "document is encrypted")
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return 0, pdferrors.Wrap(pdferrors.ErrorCorrupted, path, "failed to read page tree", err)
	}
	if ctx.PageCount == 0 {
		return 0, pdferrors.New(pdferrors.ErrorCorrupted, path, "document has no pages")
	}
	return ctx.PageCount, nil
}

func isEncryptionError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "encrypt") || strings.Contains(msg, "password")
}

func isPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
