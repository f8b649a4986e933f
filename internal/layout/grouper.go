package layout

import (
	"math"
	"sort"
	"strings"
)

const (
	// LineToleranceFactor is the fraction of a token's own height within which
	// it joins the current line
	LineToleranceFactor = 0.6

	// DefaultTokenHeight is used for tokens decoded without a font size
	DefaultTokenHeight = 10.0
)

// GroupIntoLines clusters the tokens of one page into visual rows.
// Output lines run top to bottom and tokens inside a line left to right.
// Tokens with blank text are dropped. The input slice is not modified.
func GroupIntoLines(tokens []PositionedToken, pageHeight float64) []Line {
	normalized := make([]PositionedToken, 0, len(tokens))
	for _, t := range tokens {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		t.Text = text
		t.Y = pageHeight - t.Y
		if t.Height <= 0 {
			t.Height = DefaultTokenHeight
		}
		normalized = append(normalized, t)
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		if normalized[i].Y != normalized[j].Y {
			return normalized[i].Y < normalized[j].Y
		}
		return normalized[i].X < normalized[j].X
	})

	var (
		lines   []Line
		current *lineBuilder
	)
	for _, t := range normalized {
		if current != nil && math.Abs(t.Y-current.mean()) < t.Height*LineToleranceFactor {
			current.add(t)
			continue
		}
		if current != nil {
			lines = append(lines, current.build())
		}
		current = &lineBuilder{}
		current.add(t)
	}
	if current != nil {
		lines = append(lines, current.build())
	}

	return lines
}

// GroupPages groups every page and concatenates the lines in page order
func GroupPages(pages []Page) []Line {
	var all []Line
	for i, p := range pages {
		number := p.Number
		if number == 0 {
			number = i + 1
		}
		for _, l := range GroupIntoLines(p.Tokens, p.Height) {
			l.Page = number
			all = append(all, l)
		}
	}
	return all
}

type lineBuilder struct {
	tokens []PositionedToken
	sumY   float64
}

func (b *lineBuilder) add(t PositionedToken) {
	b.tokens = append(b.tokens, t)
	b.sumY += t.Y
}

func (b *lineBuilder) mean() float64 {
	return b.sumY / float64(len(b.tokens))
}

func (b *lineBuilder) build() Line {
	sort.SliceStable(b.tokens, func(i, j int) bool {
		return b.tokens[i].X < b.tokens[j].X
	})
	return Line{Y: b.mean(), Tokens: b.tokens}
}
