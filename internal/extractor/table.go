package extractor

import (
	"regexp"
	"strings"

	"github.com/a3tai/mcp-order-reader/internal/layout"
)

const (
	// minHeaderCaptions is how many table captions a row needs to be the header
	minHeaderCaptions = 3
	// fallbackScanStart skips the letterhead block when guessing the table start
	fallbackScanStart = 10
	// maxFooterLength keeps long descriptions that mention "total" in the table
	maxFooterLength = 100
	// maxShortNoiseLength bounds the digits-and-punctuation rows treated as pagination
	maxShortNoiseLength = 25
)

var (
	leadingItemNumber = regexp.MustCompile(`^\s*(\d{1,4})\s+\S`)
	firstItemShape    = regexp.MustCompile(`^\s*1\s+\S.*\s\d[\d.,]*(?:\s|$)`)
	smallIntToken     = regexp.MustCompile(`^\d{1,4}$`)
	spelledTotal      = regexp.MustCompile(`^\(.*? reais`)
	pageCounter       = regexp.MustCompile(`pagina\s*\d+\s*(?:de|/)\s*\d+`)
	printStamp        = regexp.MustCompile(`\d{2}/\d{2}/\d{4}\s+\d{2}:\d{2}`)
	onlyDigitsPunct   = regexp.MustCompile(`^[\d\s\p{P}\p{S}]+$`)
	moneyWords        = regexp.MustCompile(`total|valor|preco|r\$|item|[\d.,]{3,}`)
	numericTail       = regexp.MustCompile(`[\d.,]*\d[\d.,]*\s+[\d.,]*\d[\d.,]*\s*$`)
)

// TableLocation is where the item table sits inside the document's rows
type TableLocation struct {
	Found         bool `json:"found"`
	HeaderMatched bool `json:"headerMatched"`
	// HeaderIndex is the caption row, or -1 when it was inferred
	HeaderIndex int `json:"headerIndex"`
	// Start is the first row that may hold an item
	Start int `json:"start"`
	// End is the footer row, or the row count when no footer was seen
	End int `json:"end"`
	// ItemColumn is the column of the line-number tokens, if known
	ItemColumn int `json:"itemColumn"`
}

// tableLocator finds the item table and classifies rows around it
type tableLocator struct {
	doc   *document
	vocab *vocabulary
}

// locate finds the table header by captions, falling back to the first row
// shaped like item 1
func (t *tableLocator) locate() TableLocation {
	loc := TableLocation{HeaderIndex: -1, ItemColumn: layout.Unaligned, End: t.doc.len()}

	if i, ok := t.headerByCaptions(); ok {
		loc.Found, loc.HeaderMatched = true, true
		loc.HeaderIndex, loc.Start = i, i+1
	} else if i, ok := t.firstItemRow(); ok {
		loc.Found = true
		loc.HeaderIndex, loc.Start = i-1, i
	} else {
		return loc
	}

	for i := loc.Start; i < t.doc.len(); i++ {
		if t.isFooter(i) {
			loc.End = i
			break
		}
	}

	for i := loc.Start; i < loc.End; i++ {
		if leadingItemNumber.MatchString(t.doc.plain[i]) && len(t.doc.lines[i].Tokens) > 0 {
			loc.ItemColumn = t.doc.lines[i].Tokens[0].Column
			break
		}
	}
	return loc
}

// captionCount counts how many table captions the folded row mentions
func (t *tableLocator) captionCount(folded string) int {
	n := 0
	for _, group := range t.vocab.tableHeader {
		for _, alt := range group {
			if containsWord(folded, []string{alt}) {
				n++
				break
			}
		}
	}
	return n
}

func (t *tableLocator) isTableHeader(i int) bool {
	return t.captionCount(t.doc.folded[i]) >= minHeaderCaptions
}

func (t *tableLocator) headerByCaptions() (int, bool) {
	for i := 0; i < t.doc.len(); i++ {
		if !t.isTableHeader(i) {
			continue
		}
		for j := i + 1; j <= i+headerLookahead && j < t.doc.len(); j++ {
			if t.startsWithSmallInt(j) {
				return i, true
			}
		}
	}
	return -1, false
}

func (t *tableLocator) startsWithSmallInt(i int) bool {
	line := t.doc.lines[i]
	if len(line.Tokens) > 0 && smallIntToken.MatchString(line.Tokens[0].Token.Text) {
		return true
	}
	return leadingItemNumber.MatchString(t.doc.plain[i])
}

func (t *tableLocator) firstItemRow() (int, bool) {
	start := fallbackScanStart
	if start >= t.doc.len() {
		start = 0
	}
	for i := start; i < t.doc.len(); i++ {
		if firstItemShape.MatchString(t.doc.plain[i]) {
			return i, true
		}
	}
	return -1, false
}

// isFooter reports whether row i closes the item table
func (t *tableLocator) isFooter(i int) bool {
	if len([]rune(t.doc.plain[i])) >= maxFooterLength {
		return false
	}
	folded := t.doc.folded[i]
	for _, k := range t.vocab.footer {
		if strings.HasPrefix(folded, k) {
			return true
		}
	}
	return spelledTotal.MatchString(folded)
}

// isPageNoise reports rows repeated on every page: letterhead, pagination,
// print stamps and the repeated table caption row
func (t *tableLocator) isPageNoise(i int) bool {
	folded := t.doc.folded[i]
	plain := t.doc.plain[i]

	for _, k := range t.vocab.pageMarkers {
		if strings.HasPrefix(folded, k) {
			return true
		}
	}
	if pageCounter.MatchString(folded) || printStamp.MatchString(plain) {
		return true
	}
	if !leadingItemNumber.MatchString(plain) && containsWord(folded, t.vocab.institution) {
		return true
	}
	if t.isTableHeader(i) {
		return true
	}
	if len([]rune(plain)) < maxShortNoiseLength && onlyDigitsPunct.MatchString(plain) && !moneyWords.MatchString(folded) {
		return true
	}
	return false
}

// isComment reports annotation rows inside the table (requests, notes,
// contact lines) that must not join an item's description
func (t *tableLocator) isComment(i int) bool {
	folded := strings.TrimSpace(t.doc.folded[i])
	if leadingItemNumber.MatchString(folded) && numericTail.MatchString(folded) {
		return false
	}
	for _, re := range t.vocab.noise {
		if re.MatchString(folded) {
			return true
		}
	}
	return false
}
