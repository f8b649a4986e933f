// Package layout rebuilds visual rows and table columns from positioned PDF
// text tokens.
package layout

import "strings"

// PositionedToken is one rendered text run with its origin and glyph height.
// Y is in PDF user space (origin bottom-left) until GroupIntoLines flips it.
type PositionedToken struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
}

// Page is the token stream of one decoded page
type Page struct {
	Number int               `json:"number"`
	Height float64           `json:"height"`
	Tokens []PositionedToken `json:"tokens"`
}

// Line is a visual row: tokens that share a baseline, ordered left to right.
// Y is the mean top-down y of its members.
type Line struct {
	Page   int               `json:"page,omitempty"`
	Y      float64           `json:"y"`
	Tokens []PositionedToken `json:"tokens"`
}

// Text joins the line's token texts with single spaces
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Tokens))
	for _, t := range l.Tokens {
		if s := strings.TrimSpace(t.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Column is a recurring x position shared by tokens on many lines
type Column struct {
	X         float64 `json:"x"`
	Frequency int     `json:"frequency"`
}

// ColumnProfile holds the significant columns of one document, sorted by X.
// Tolerance is the radius used to assign a token to a column.
type ColumnProfile struct {
	Columns   []Column `json:"columns"`
	Tolerance float64  `json:"tolerance"`
}

// Unaligned is the column index of a token that sits near no column
const Unaligned = -1

// AnnotatedToken pairs a token with the column it was assigned to
type AnnotatedToken struct {
	Token  PositionedToken `json:"token"`
	Column int             `json:"column"`
}

// AnnotatedLine is a Line whose tokens carry column assignments
type AnnotatedLine struct {
	Page   int              `json:"page,omitempty"`
	Y      float64          `json:"y"`
	Tokens []AnnotatedToken `json:"tokens"`
}

// Text joins the line's token texts with single spaces
func (l AnnotatedLine) Text() string {
	parts := make([]string, 0, len(l.Tokens))
	for _, t := range l.Tokens {
		if s := strings.TrimSpace(t.Token.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
