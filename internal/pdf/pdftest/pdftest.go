// Package pdftest builds small single-font PDFs for tests. Every cell is
// drawn with its own text object, so the decoded token starts exactly at
// the cell's x and y.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FontSize is the size every cell is drawn with
const FontSize = 10

// glyphWidth is the advance of every printable ASCII glyph, in 1/1000 em
const glyphWidth = 500

// Cell is one run of ASCII text at a PDF user space position
type Cell struct {
	X, Y float64
	Text string
}

// Row places cells on a shared baseline; pairs are x then text
func Row(y float64, pairs ...any) []Cell {
	cells := make([]Cell, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		cells = append(cells, Cell{X: toFloat(pairs[i]), Y: y, Text: pairs[i+1].(string)})
	}
	return cells
}

// Page flattens rows into one page's cells
func Page(rows ...[]Cell) []Cell {
	var out []Cell
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

// Build returns an A4 PDF with one page per cell list
func Build(pages ...[]Cell) []byte {
	var objects []string

	pageCount := len(pages)
	kids := make([]string, pageCount)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 595 842] >>",
			strings.Join(kids, " "), pageCount),
		fontObject(),
	)

	for i, cells := range pages {
		content := contentStream(cells)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// WriteFile builds the PDF into dir/name and returns its path
func WriteFile(t testing.TB, dir, name string, pages ...[]Cell) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages...), 0o644); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}

// OrderPage is a complete one-page order report: order 60726 from
// PAPELARIA MODELO LTDA with two items totalling 139,50
func OrderPage() []Cell {
	return Page(
		Row(800, 40, "Relatorio de Pedido de Compra"),
		Row(780, 40, "Pedido Numero", 200, "Revisao", 300, "Data Criacao"),
		Row(766, 40, "60726", 200, "0", 300, "24-ABR-25"),
		Row(740, 40, "Fornecedor:", 120, "12.345.678/0001-90"),
		Row(726, 40, "PAPELARIA MODELO LTDA"),
		Row(700, 40, "Comprador: MARIA SOUZA"),
		Row(660, 40, "Linha", 70, "Produto/Servico", 300, "Quantidade", 360, "UN", 400, "Preco Unitario", 480, "Total"),
		Row(646, 40, "1", 70, "001234.", 120, "CANETA AZUL", 300, "10,000", 360, "UN", 400, "2,50", 480, "25,00"),
		Row(632, 40, "2", 70, "005678.", 120, "PAPEL A4", 300, "5,000", 360, "PCT", 400, "22,90", 480, "114,50"),
		Row(606, 40, "Total Geral:", 480, "139,50"),
	)
}

func fontObject() string {
	widths := make([]string, 0, 95)
	for range 95 {
		widths = append(widths, fmt.Sprint(glyphWidth))
	}
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding "+
		"/FirstChar 32 /LastChar 126 /Widths [%s] >>", strings.Join(widths, " "))
}

func contentStream(cells []Cell) string {
	var b strings.Builder
	for _, c := range cells {
		fmt.Fprintf(&b, "BT /F1 %d Tf %.2f %.2f Td (%s) Tj ET\n", FontSize, c.X, c.Y, escape(c.Text))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	default:
		panic(fmt.Sprintf("pdftest: unsupported coordinate %T", v))
	}
}
