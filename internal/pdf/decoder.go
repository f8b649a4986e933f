package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-order-reader/internal/layout"
	pdferrors "github.com/a3tai/mcp-order-reader/internal/pdf/errors"
)

const (
	// glyphGapFactor is the largest x gap, relative to the font size, that
	// still joins two glyphs into one token
	glyphGapFactor = 0.3
	// baselineTolerance is how far two glyphs' y may differ on one baseline
	baselineTolerance = 0.5
	// defaultPageHeight is the A4 height in points
	defaultPageHeight = 842.0
	// maxParentDepth bounds the walk up the page tree for an inherited MediaBox
	maxParentDepth = 10
)

// Decoder turns a PDF's text layer into positioned tokens, one Page per
// PDF page
type Decoder struct {
	maxFileSize int64
	logger      *log.Logger
}

// Decoded is the token stream of a whole document plus any per-page
// problems that were skipped over
type Decoded struct {
	Pages     []layout.Page `json:"pages"`
	PageCount int           `json:"page_count"`
	Warnings  []string      `json:"warnings,omitempty"`
}

// TokenCount returns the number of tokens over all pages
func (d *Decoded) TokenCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Tokens)
	}
	return n
}

// NewDecoder creates a decoder that refuses files above maxFileSize bytes
func NewDecoder(maxFileSize int64, logger *log.Logger) *Decoder {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Decoder{maxFileSize: maxFileSize, logger: logger}
}

// DecodeFile reads and decodes the PDF at path
func (d *Decoder) DecodeFile(ctx context.Context, path string) (*Decoded, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorInvalidFile, path, "cannot access file", err)
	}
	if info.IsDir() {
		return nil, pdferrors.New(pdferrors.ErrorInvalidFile, path, "path is a directory, not a file")
	}
	if d.maxFileSize > 0 && info.Size() > d.maxFileSize {
		return nil, pdferrors.New(pdferrors.ErrorFileTooLarge, path,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", info.Size(), d.maxFileSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorInvalidFile, path, "cannot read file", err)
	}
	return d.decode(ctx, path, data)
}

// DecodeBytes decodes an in-memory PDF, such as an upload
func (d *Decoder) DecodeBytes(ctx context.Context, data []byte) (*Decoded, error) {
	if d.maxFileSize > 0 && int64(len(data)) > d.maxFileSize {
		return nil, pdferrors.New(pdferrors.ErrorFileTooLarge, "",
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", len(data), d.maxFileSize))
	}
	return d.decode(ctx, "", data)
}

func (d *Decoder) decode(ctx context.Context, path string, data []byte) (result *Decoded, err error) {
	if !hasPDFHeader(data) {
		return nil, pdferrors.New(pdferrors.ErrorInvalidFile, path, "missing %PDF header")
	}

	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = pdferrors.New(pdferrors.ErrorCorrupted, path, fmt.Sprintf("decoder panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorCorrupted, path, "failed to open PDF", err)
	}

	result = &Decoded{PageCount: reader.NumPage()}
	for n := 1; n <= reader.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("decoding interrupted at page %d: %w", n, err)
		}

		page, err := d.decodePage(reader, n)
		if err != nil {
			pageErr := pdferrors.Wrap(pdferrors.ErrorPageDecode, path, "page skipped", err).WithPage(n)
			d.logger.Printf("%v", pageErr)
			result.Warnings = append(result.Warnings, fmt.Sprintf("page %d could not be decoded and was skipped: %v", n, err))
			continue
		}
		result.Pages = append(result.Pages, page)
	}

	if result.TokenCount() == 0 {
		return nil, pdferrors.New(pdferrors.ErrorNoText, path, "document has no text layer (scanned image?)")
	}
	return result, nil
}

func (d *Decoder) decodePage(reader *pdf.Reader, n int) (page layout.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	p := reader.Page(n)
	page = layout.Page{Number: n, Height: defaultPageHeight}
	if p.V.IsNull() {
		return page, nil
	}

	page.Height = pageHeight(p.V)
	page.Tokens = mergeGlyphs(p.Content().Text)
	return page, nil
}

// mergeGlyphs joins consecutive glyphs that sit on one baseline with a gap
// below glyphGapFactor times the font size. Whitespace glyphs end a token.
func mergeGlyphs(glyphs []pdf.Text) []layout.PositionedToken {
	var (
		tokens []layout.PositionedToken
		cur    strings.Builder
		tok    layout.PositionedToken
		right  float64
		open   bool
	)

	flush := func() {
		if open {
			if text := strings.TrimSpace(cur.String()); text != "" {
				tok.Text = text
				tokens = append(tokens, tok)
			}
		}
		cur.Reset()
		open = false
	}

	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			flush()
			continue
		}

		size := g.FontSize
		if size <= 0 {
			size = layout.DefaultTokenHeight
		}

		if open {
			gap := g.X - right
			sameBaseline := math.Abs(g.Y-tok.Y) <= baselineTolerance
			if !sameBaseline || gap >= glyphGapFactor*size || gap < -size {
				flush()
			}
		}

		if !open {
			tok = layout.PositionedToken{X: g.X, Y: g.Y, Height: size}
			open = true
		}
		cur.WriteString(g.S)
		right = g.X + g.W
	}
	flush()
	return tokens
}

// pageHeight reads the MediaBox height, walking up to inherited boxes
func pageHeight(v pdf.Value) float64 {
	for range maxParentDepth {
		if v.IsNull() {
			break
		}
		if h, ok := mediaBoxHeight(v.Key("MediaBox")); ok {
			return h
		}
		v = v.Key("Parent")
	}
	return defaultPageHeight
}

func mediaBoxHeight(box pdf.Value) (float64, bool) {
	if box.Kind() != pdf.Array || box.Len() != 4 {
		return 0, false
	}
	lly, ury := number(box.Index(1)), number(box.Index(3))
	h := math.Abs(ury - lly)
	if h == 0 {
		return 0, false
	}
	return h, true
}

func number(v pdf.Value) float64 {
	switch v.Kind() {
	case pdf.Integer:
		return float64(v.Int64())
	case pdf.Real:
		return v.Float64()
	default:
		return 0
	}
}

func hasPDFHeader(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("%PDF-"))
}
