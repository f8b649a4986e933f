package extractor

import (
	"strings"

	"github.com/a3tai/mcp-order-reader/internal/layout"
	"github.com/a3tai/mcp-order-reader/internal/locale"
)

// document is the read-only view of one extraction: the annotated rows plus
// their plain and folded text, index aligned
type document struct {
	lines   []layout.AnnotatedLine
	plain   []string
	folded  []string
	raw     string
	profile layout.ColumnProfile
}

func newDocument(lines []layout.Line) *document {
	profile := layout.InferColumns(lines)
	annotated := layout.Annotate(lines, profile)

	d := &document{
		lines:   annotated,
		plain:   make([]string, len(annotated)),
		folded:  make([]string, len(annotated)),
		profile: profile,
	}
	for i, l := range annotated {
		d.plain[i] = l.Text()
		d.folded[i] = locale.Fold(d.plain[i])
	}
	d.raw = strings.Join(d.plain, "\n")
	return d
}

func (d *document) len() int {
	return len(d.lines)
}

// head returns how many of the first n lines exist
func (d *document) head(n int) int {
	return min(n, len(d.lines))
}
