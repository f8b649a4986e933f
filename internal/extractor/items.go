package extractor

import (
	"fmt"
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/a3tai/mcp-order-reader/internal/layout"
	"github.com/a3tai/mcp-order-reader/internal/locale"
)

const (
	// maxLineNumberGap bounds how far ahead of the expected line number a row
	// may jump and still start an item; "500 FOLHAS" on a continuation row is
	// not item 500
	maxLineNumberGap = 50
	maxUnitLength    = 10
	defaultUnit      = "UN"
	serviceUnit      = "SV"
	snippetLength    = 60
)

const (
	numPart  = `[\d.,]+`
	datePart = `\d{1,2}[-./](?:[A-Za-z]{3}|\d{1,2})[-./]\d{2,4}`
	unitPart = `(?P<unit>[A-Za-zÀ-ÖØ-öø-ÿ/]{1,15})`
	rowHead  = `(?i)^\s*(?P<line>\d{1,4})\s+(?:(?P<code>\d{6,12})\.?\s*)?(?P<desc>.+?)\s+(?:(?P<date>` + datePart + `)\s+)?`
	rowTail  = `(?P<qty>` + numPart + `)\s+` + unitPart + `\s+(?P<unitPrice>` + numPart + `)\s+(?P<total>` + numPart + `)`
)

// itemTemplates are the row shapes tried in order on a buffered item. Wrapped
// text led by a number ("500 FOLHAS") is only accepted after the row failed to
// end on its total, so numbers inside a description never pose as the price
// tail.
var itemTemplates = []patternRule[itemDraft]{
	{
		name:    "trailing-text",
		pattern: regexp.MustCompile(rowHead + rowTail + `\s+(?P<trailing>[^\d\s].*?)\s*$`),
		extract: draftFromTemplate(false),
	},
	{
		name:    "dated",
		pattern: regexp.MustCompile(rowHead + rowTail + `\s*$`),
		extract: draftFromTemplate(false),
	},
	{
		name:    "trailing-number",
		pattern: regexp.MustCompile(rowHead + rowTail + `\s+(?P<trailing>\S.*?)\s*$`),
		extract: draftFromTemplate(false),
	},
	{
		name: "service",
		pattern: regexp.MustCompile(rowHead + `R\$\s*(?P<qty>` + numPart + `)\s+(?P<unitPrice>` + numPart +
			`)\s+(?P<total>` + numPart + `)\s*$`),
		extract: draftFromTemplate(true),
	},
}

var (
	leadingNumber = regexp.MustCompile(`^\s*\d{1,4}\s+`)
	codeToken     = regexp.MustCompile(`^(\d{6,12})\.$`)
	bareCodeToken = regexp.MustCompile(`^(\d{6,12})\.?$`)
	dateToken     = regexp.MustCompile(`^` + datePart + `$`)
	moneyToken    = regexp.MustCompile(`^(?:R\$)?(?:\d{1,3}(?:\.\d{3})*|\d+),\d{2,4}$`)
	numericToken  = regexp.MustCompile(`^\d[\d.,]*$`)

	descCode       = regexp.MustCompile(`^\d{6,12}\.?\s*`)
	descNoise      = regexp.MustCompile(`(?i)\b(?:c[oó]d(?:igo)?|ref|part\s*number|p/n|ncm)\s*[:.]\s*\S+`)
	descComment    = regexp.MustCompile(`\*\*.*$`)
	currencySymbol = regexp.MustCompile(`(?i)^r\$?$`)
)

// itemDraft is an item as read from text, before reconciliation
type itemDraft struct {
	lineNumber int
	code       string
	desc       string
	date       string
	unit       string
	quantity   float64
	unitPrice  float64
	totalPrice float64
}

func (d itemDraft) hasNumbers() bool {
	return locale.IsPositive(d.quantity) || locale.IsPositive(d.unitPrice) || locale.IsPositive(d.totalPrice)
}

func draftFromTemplate(service bool) func(g groups) (itemDraft, bool) {
	return func(g groups) (itemDraft, bool) {
		n, err := strconv.Atoi(g.get("line"))
		if err != nil {
			return itemDraft{}, false
		}

		d := itemDraft{
			lineNumber: n,
			code:       g.get("code"),
			desc:       g.get("desc"),
			date:       g.get("date"),
			unit:       g.get("unit"),
			quantity:   locale.ParseNumber(g.get("qty")),
			unitPrice:  locale.ParseNumber(g.get("unitPrice")),
			totalPrice: locale.ParseNumber(g.get("total")),
		}
		if trailing := g.get("trailing"); trailing != "" {
			d.desc += " " + trailing
		}
		if service {
			d.unit = serviceUnit
		}
		return d, true
	}
}

type parseState int

const (
	seekingTable parseState = iota
	inTable
	done
)

// itemParser walks the table rows, buffering each item's rows until the next
// item, the footer or the end of input
type itemParser struct {
	doc    *document
	table  *tableLocator
	vocab  *vocabulary
	logger *log.Logger

	state      parseState
	loc        TableLocation
	expected   int
	buffer     []string
	bufferLine int

	items    []LineItem
	warnings []string
	// itemRows counts rows recognized as the start of an item
	itemRows int
}

func (p *itemParser) run() {
	row := 0
	for p.state != done {
		switch p.state {
		case seekingTable:
			p.loc = p.table.locate()
			if !p.loc.Found {
				p.warn("item table not found; no items extracted")
				p.state = done
				continue
			}
			p.logger.Printf("item table rows %d-%d (header matched: %t)", p.loc.Start, p.loc.End, p.loc.HeaderMatched)
			row, p.expected, p.state = p.loc.Start, 1, inTable

		case inTable:
			if row >= p.doc.len() {
				p.flush()
				p.state = done
				continue
			}
			p.step(row)
			row++
		}
	}
}

func (p *itemParser) step(i int) {
	switch {
	case p.table.isFooter(i):
		p.flush()
		p.state = done
	case p.table.isPageNoise(i):
		p.logger.Printf("skip page row %d: %q", i, p.doc.plain[i])
	default:
		if n, ok := p.newItem(i); ok {
			p.flush()
			p.buffer = []string{p.doc.plain[i]}
			p.bufferLine = n
			p.expected = n + 1
			return
		}
		if p.table.isComment(i) {
			p.logger.Printf("skip comment row %d: %q", i, p.doc.plain[i])
			return
		}
		if len(p.buffer) > 0 {
			p.buffer = append(p.buffer, p.doc.plain[i])
		}
	}
}

// newItem reports whether row i starts the next item and returns its number
func (p *itemParser) newItem(i int) (int, bool) {
	m := leadingItemNumber.FindStringSubmatch(p.doc.plain[i])
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < p.expected || n > p.expected+maxLineNumberGap {
		return 0, false
	}

	tokens := p.doc.lines[i].Tokens
	if p.loc.ItemColumn != layout.Unaligned && len(tokens) > 0 &&
		tokens[0].Column != layout.Unaligned && tokens[0].Column != p.loc.ItemColumn {
		return 0, false
	}
	return n, true
}

func (p *itemParser) flush() {
	if len(p.buffer) == 0 {
		return
	}
	p.itemRows++
	text := strings.Join(p.buffer, " ")
	p.buffer = nil

	item, ok := p.parse(text, p.bufferLine)
	if !ok {
		p.warn(fmt.Sprintf("Item %d: unparseable item row %q", p.bufferLine, snippet(text, snippetLength)))
		return
	}
	p.items = append(p.items, item)
}

func (p *itemParser) warn(msg string) {
	p.warnings = append(p.warnings, msg)
}

// parse turns the joined rows of one item into a LineItem
func (p *itemParser) parse(text string, lineNumber int) (LineItem, bool) {
	draft, via, ok := matchFirst(text, itemTemplates)
	if !ok || draft.lineNumber != lineNumber {
		draft, via = p.aggressive(text, lineNumber), "aggressive"
		if strings.TrimSpace(draft.desc) == "" && !draft.hasNumbers() {
			return LineItem{}, false
		}
		p.warn(fmt.Sprintf("Item %d: row did not match a known layout, values guessed from %q",
			lineNumber, snippet(text, snippetLength)))
	}
	p.logger.Printf("item %d via %s", lineNumber, via)

	item := LineItem{
		LineNumber:  lineNumber,
		Code:        strings.TrimSuffix(draft.code, "."),
		Description: p.cleanDescription(draft.desc),
		Unit:        normalizeUnit(draft.unit),
	}
	if item.Description == "" {
		item.Description = NotFound
	}
	if draft.date != "" {
		if date, ok := locale.NormalizeDate(draft.date); ok {
			item.DeliveryDate = date
		}
	}

	var note string
	item.Quantity, item.UnitPrice, item.TotalPrice, note = reconcile(draft.quantity, draft.unitPrice, draft.totalPrice)
	if note != "" {
		p.warn(fmt.Sprintf("Item %d: %s", lineNumber, note))
	}
	return item, true
}

// aggressive reads an item row that fits no template. It strips the line
// number, the product code, a delivery date and the quantity/unit pair, takes
// monetary tokens as prices and keeps every unconsumed token as description.
func (p *itemParser) aggressive(text string, lineNumber int) itemDraft {
	d := itemDraft{
		lineNumber: lineNumber,
		quantity:   math.NaN(),
		unitPrice:  math.NaN(),
		totalPrice: math.NaN(),
	}

	tokens := strings.Fields(leadingNumber.ReplaceAllString(text, ""))
	used := make([]bool, len(tokens))

	for i, t := range tokens {
		if m := codeToken.FindStringSubmatch(t); m != nil {
			d.code, used[i] = m[1], true
			break
		}
	}
	if d.code == "" && len(tokens) > 0 {
		if m := bareCodeToken.FindStringSubmatch(tokens[0]); m != nil {
			d.code, used[0] = m[1], true
		}
	}

	for i, t := range tokens {
		if !used[i] && dateToken.MatchString(t) {
			d.date, used[i] = t, true
			break
		}
	}

	for i := len(tokens) - 1; i > 0; i-- {
		if !used[i] && !used[i-1] && p.vocab.isUnit(tokens[i]) && numericToken.MatchString(tokens[i-1]) {
			d.unit, d.quantity = tokens[i], locale.ParseNumber(tokens[i-1])
			used[i], used[i-1] = true, true
			break
		}
	}
	if d.unit == "" {
		for i := len(tokens) - 1; i > 0; i-- {
			if !used[i] && p.vocab.isUnit(tokens[i]) && onlyNumbersAfter(tokens, i) {
				d.unit, used[i] = tokens[i], true
				break
			}
		}
	}

	var prices []float64
	for i, t := range tokens {
		if used[i] || !moneyToken.MatchString(t) {
			continue
		}
		prices = append(prices, locale.ParseNumber(t))
		used[i] = true
	}

	switch {
	case len(prices) >= 2:
		d.unitPrice, d.totalPrice = prices[len(prices)-2], prices[len(prices)-1]
	case len(prices) == 1 && locale.IsPositive(d.quantity):
		d.unitPrice = prices[0]
	case len(prices) == 1:
		d.quantity, d.unitPrice, d.totalPrice = 1, prices[0], prices[0]
	}

	var words []string
	for i, t := range tokens {
		if used[i] || currencySymbol.MatchString(t) {
			continue
		}
		words = append(words, t)
	}
	d.desc = strings.Join(words, " ")
	return d
}

func onlyNumbersAfter(tokens []string, i int) bool {
	for _, t := range tokens[i+1:] {
		if !numericToken.MatchString(strings.TrimPrefix(t, "R$")) {
			return false
		}
	}
	return true
}

// cleanDescription strips codes, reference noise, ** comments and a trailing
// unit token from a description
func (p *itemParser) cleanDescription(s string) string {
	s = descCode.ReplaceAllString(collapse(s), "")
	s = descNoise.ReplaceAllString(s, " ")
	s = descComment.ReplaceAllString(s, "")
	s = collapse(s)

	if fields := strings.Fields(s); len(fields) > 1 && p.vocab.isUnit(fields[len(fields)-1]) {
		s = strings.Join(fields[:len(fields)-1], " ")
	}
	return edgePunct.ReplaceAllString(s, "")
}

func normalizeUnit(u string) string {
	u = strings.ToUpper(strings.TrimSpace(u))
	switch {
	case u == "":
		return defaultUnit
	case u == "R$" || u == "R":
		return serviceUnit
	}
	if r := []rune(u); len(r) > maxUnitLength {
		u = string(r[:maxUnitLength])
	}
	return u
}
