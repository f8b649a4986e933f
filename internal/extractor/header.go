package extractor

import (
	"fmt"
	"log"
	"math"
	"regexp"
	"strings"

	"github.com/a3tai/mcp-order-reader/internal/layout"
	"github.com/a3tai/mcp-order-reader/internal/locale"
)

const (
	orderHeaderScanLines    = 15
	orderPatternScanLines   = 25
	isolatedNumberScanLines = 15
	rawTextScanChars        = 1000
	supplierScanLines       = 30
	taxIDScanLines          = 40
	senderScanLines         = 40
	headerLookahead         = 3
	maxSupplierNameWords    = 7
	minNameLength           = 3
	maxSenderNameLength     = 60
)

var (
	orderFollowLine = regexp.MustCompile(`(?i)^(?:["\s]*PEDIDO["\s]*)?["\s]*(\d{5,8})\b`)
	fourToEight     = regexp.MustCompile(`^\d{4,8}$`)
	fiveToEight     = regexp.MustCompile(`^\d{5,8}$`)
	digitRun        = regexp.MustCompile(`\d+`)

	orderNumberRules = []patternRule[string]{
		{
			name:    "pedido-n",
			pattern: regexp.MustCompile(`(?i)pedido\s*n[º°.o]?\s*[:\-]?\s*(\d{5,8})(?:\D|$)`),
			extract: firstGroup,
		},
		{
			name:    "pedido-ordem",
			pattern: regexp.MustCompile(`(?i)(?:pedido|ordem)(?:\s+de\s+compra)?\s*(?:n[º°.]?|n[uú]mero)?\s*[:\-]?\s*(\d{5,8})(?:\D|$)`),
			extract: firstGroup,
		},
	}

	strictDate     = regexp.MustCompile(`^(\d{1,2}[-./](?:\d{1,2}|[A-Za-z]{3})[-./]\d{2,4})(?:\s|$)`)
	looseDate      = regexp.MustCompile(`\d{1,2}[-./](?:\d{1,2}|[A-Za-z]{3})[-./]\d{2,4}`)
	leadingJunk    = regexp.MustCompile(`^[\s:.\-–]+`)
	edgePunct      = regexp.MustCompile(`^[\s\-:,.;/]+|[\s\-:,.;/]+$`)
	parenCode      = regexp.MustCompile(`\(\s*\d+\s*\)`)
	legalSuffix    = regexp.MustCompile(`(?i)\s+(?:LTDA|EIRELI|EPP|ME|S\.?\s?/?A\.?|CIA\.?)(?:\s.*)?$`)
	cnpjLabelTail  = regexp.MustCompile(`(?i)\bCNPJ\b.*$`)
	supplierPrefix = regexp.MustCompile(`(?i)^\s*(?:fornecedor|raz[aã]o\s+social|emitente)\s*[:\-]?\s*`)
)

// headerExtractor resolves the order-level fields of one document
type headerExtractor struct {
	doc      *document
	vocab    *vocabulary
	logger   *log.Logger
	fallback func() string
	warnings []string
}

func (h *headerExtractor) extract() RawOrderHeader {
	var header RawOrderHeader

	if number, via, ok := firstOf(
		strategy[string]{"header-row", h.orderFromHeaderRow},
		strategy[string]{"label-pattern", h.orderFromPattern},
		strategy[string]{"isolated-token", h.orderFromIsolatedToken},
		strategy[string]{"raw-text", h.orderFromRawText},
	); ok {
		header.OrderNumber = number
		h.logger.Printf("order number %s via %s", number, via)
	} else {
		header.OrderNumber = h.fallback()
		h.warn(fmt.Sprintf("order number not found; generated placeholder %s", header.OrderNumber))
	}

	header.SupplierName, header.SupplierTaxID = h.supplier()
	if header.SupplierTaxID == "" {
		h.warn("supplier tax ID (CNPJ) not found")
	}
	if header.SupplierName == "" {
		h.warn("supplier name not found")
	}

	if name, ok := h.senderFromLabel(); ok {
		header.SenderName = name
		h.logger.Printf("sender %q", name)
	}

	if date, via, ok := firstOf(
		strategy[string]{"date-label", h.dateFromLabel},
		strategy[string]{"date-column", h.dateFromHeaderColumn},
	); ok {
		header.SentDate = date
		h.logger.Printf("sent date %s via %s", date, via)
	} else {
		h.warn("order date not found")
	}

	return header
}

func (h *headerExtractor) warn(msg string) {
	h.warnings = append(h.warnings, msg)
}

// orderHeaderRow returns the index of the row holding every order header
// caption within the first lines, or -1
func (h *headerExtractor) orderHeaderRow() int {
	for i := 0; i < h.doc.head(orderHeaderScanLines); i++ {
		all := len(h.vocab.orderHeader) > 0
		for _, k := range h.vocab.orderHeader {
			if !strings.Contains(h.doc.folded[i], k) {
				all = false
				break
			}
		}
		if all {
			return i
		}
	}
	return -1
}

// labelToken finds the first token of line whose folded text contains one of
// the captions, in caption order
func labelToken(line layout.AnnotatedLine, captions ...string) (layout.AnnotatedToken, bool) {
	for _, c := range captions {
		for _, t := range line.Tokens {
			if strings.Contains(locale.Fold(t.Token.Text), c) {
				return t, true
			}
		}
	}
	return layout.AnnotatedToken{}, false
}

// aligned reports whether t sits under label: close in x or in the same column
func (h *headerExtractor) aligned(t, label layout.AnnotatedToken) bool {
	if math.Abs(t.Token.X-label.Token.X) < h.doc.profile.Tolerance {
		return true
	}
	return label.Column != layout.Unaligned && t.Column == label.Column
}

func (h *headerExtractor) orderFromHeaderRow() (string, bool) {
	row := h.orderHeaderRow()
	if row < 0 {
		return "", false
	}

	label, hasLabel := labelToken(h.doc.lines[row], "pedido", "numero")
	if hasLabel {
		for _, t := range h.doc.lines[row].Tokens {
			if t.Token.X > label.Token.X && fourToEight.MatchString(strings.Trim(t.Token.Text, `" `)) {
				return strings.Trim(t.Token.Text, `" `), true
			}
		}

		for j := row + 1; j <= row+headerLookahead && j < h.doc.len(); j++ {
			for _, t := range h.doc.lines[j].Tokens {
				text := strings.Trim(t.Token.Text, `" `)
				if fiveToEight.MatchString(text) && h.aligned(t, label) {
					return text, true
				}
			}
		}
	}

	for j := row + 1; j <= row+headerLookahead && j < h.doc.len(); j++ {
		if m := orderFollowLine.FindStringSubmatch(h.doc.plain[j]); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func (h *headerExtractor) orderFromPattern() (string, bool) {
	for i := 0; i < h.doc.head(orderPatternScanLines); i++ {
		if number, _, ok := matchFirst(h.doc.plain[i], orderNumberRules); ok {
			return number, true
		}
	}
	return "", false
}

func (h *headerExtractor) orderFromIsolatedToken() (string, bool) {
	for i := 0; i < h.doc.head(isolatedNumberScanLines); i++ {
		for _, t := range h.doc.lines[i].Tokens {
			if fourToEight.MatchString(t.Token.Text) {
				return t.Token.Text, true
			}
		}
	}
	return "", false
}

func (h *headerExtractor) orderFromRawText() (string, bool) {
	raw := []rune(h.doc.raw)
	if len(raw) > rawTextScanChars {
		raw = raw[:rawTextScanChars]
	}

	fallback := ""
	for _, run := range digitRun.FindAllString(string(raw), -1) {
		switch {
		case len(run) >= 5 && len(run) <= 8:
			return run, true
		case len(run) == 4 && fallback == "":
			fallback = run
		}
	}
	return fallback, fallback != ""
}

// supplier resolves the supplier name and tax ID. The name only comes from a
// labelled block; the tax ID falls back to any CNPJ outside letterhead rows.
func (h *headerExtractor) supplier() (string, string) {
	type found struct{ name, taxID string }

	res, via, ok := firstOf(
		strategy[found]{"supplier-tokens", func() (found, bool) {
			name, taxID := h.supplierFromTokens()
			return found{name, taxID}, name != "" || taxID != ""
		}},
		strategy[found]{"supplier-text", func() (found, bool) {
			name, taxID := h.supplierFromText()
			return found{name, taxID}, name != "" || taxID != ""
		}},
	)
	if ok {
		h.logger.Printf("supplier %q / %q via %s", res.name, res.taxID, via)
	}

	if res.taxID == "" {
		if taxID, ok := h.taxIDFallback(); ok {
			res.taxID = taxID
			h.logger.Printf("supplier tax ID %s via regex fallback", taxID)
		}
	}
	if res.taxID != "" {
		res.taxID = locale.FormatCNPJ(res.taxID)
	}
	return res.name, res.taxID
}

// isSupplierLabel reports whether folded starts with a supplier caption
func (h *headerExtractor) isSupplierLabel(folded string) bool {
	return locale.HasAnyPrefix(folded, h.vocab.supplierLabels)
}

func (h *headerExtractor) supplierFromTokens() (string, string) {
	for i := 0; i < h.doc.head(supplierScanLines); i++ {
		line := h.doc.lines[i]

		labelAt := -1
		for j, t := range line.Tokens {
			if h.isSupplierLabel(locale.Fold(t.Token.Text)) {
				labelAt = j
				break
			}
		}
		if labelAt < 0 {
			continue
		}

		var (
			taxID     string
			nameParts []string
		)
		label := line.Tokens[labelAt]
		// the label token may carry the value itself: "Fornecedor: 12.345.678/0001-90"
		if rest := supplierPrefix.ReplaceAllString(label.Token.Text, ""); rest != "" {
			if id, ok := locale.FindCNPJ(rest); ok {
				taxID = id
			}
			nameParts = append(nameParts, rest)
		}
		for _, t := range line.Tokens[labelAt+1:] {
			if t.Token.X <= label.Token.X {
				continue
			}
			folded := locale.Fold(t.Token.Text)
			if id, ok := locale.FindCNPJ(t.Token.Text); ok {
				if taxID == "" {
					taxID = id
				}
				continue
			}
			if locale.ContainsAny(folded, h.vocab.institution) {
				break
			}
			nameParts = append(nameParts, t.Token.Text)
		}

		name := h.cleanSupplierName(strings.Join(nameParts, " "))
		for j := i + 1; j <= i+headerLookahead && j < h.doc.len(); j++ {
			if taxID == "" {
				if id, ok := locale.FindCNPJ(h.doc.plain[j]); ok && !h.isLetterhead(h.doc.folded[j]) {
					taxID = id
				}
			}
			if name == "" && !h.isLetterhead(h.doc.folded[j]) && !h.isSupplierLabel(h.doc.folded[j]) {
				name = h.cleanSupplierName(h.doc.plain[j])
			}
		}

		if name != "" || taxID != "" {
			return name, taxID
		}
	}
	return "", ""
}

func (h *headerExtractor) supplierFromText() (string, string) {
	for i := 0; i < h.doc.head(supplierScanLines); i++ {
		folded := h.doc.folded[i]
		if h.isLetterhead(folded) {
			continue
		}

		var (
			rest string
			ok   bool
		)
		for _, label := range h.vocab.supplierLabels {
			if rest, ok = locale.After(h.doc.plain[i], label); ok {
				break
			}
		}
		if !ok {
			continue
		}

		taxID, _ := locale.FindCNPJ(rest)
		name := h.cleanSupplierName(rest)
		for j := i + 1; j <= i+headerLookahead && j < h.doc.len(); j++ {
			if h.isLetterhead(h.doc.folded[j]) {
				continue
			}
			if taxID == "" {
				taxID, _ = locale.FindCNPJ(h.doc.plain[j])
			}
			if name == "" {
				name = h.cleanSupplierName(h.doc.plain[j])
			}
		}
		if name != "" || taxID != "" {
			return name, taxID
		}
	}
	return "", ""
}

// taxIDFallback takes the first CNPJ found on a line that carries neither
// letterhead nor address keywords
func (h *headerExtractor) taxIDFallback() (string, bool) {
	for i := 0; i < h.doc.head(taxIDScanLines); i++ {
		folded := h.doc.folded[i]
		if h.isLetterhead(folded) || containsWord(folded, h.vocab.address) {
			continue
		}
		if id, ok := locale.FindCNPJ(h.doc.plain[i]); ok {
			return id, true
		}
	}
	return "", false
}

// isLetterhead reports rows that belong to the buyer institution
func (h *headerExtractor) isLetterhead(folded string) bool {
	return locale.ContainsAny(folded, h.vocab.institution)
}

// cleanSupplierName trims a raw supplier name candidate down to the company
// name, returning "" when nothing plausible is left
func (h *headerExtractor) cleanSupplierName(raw string) string {
	s := supplierPrefix.ReplaceAllString(raw, "")
	s = cnpjLabelTail.ReplaceAllString(s, "")
	if id, ok := locale.FindCNPJ(s); ok {
		s = strings.Replace(s, id, " ", 1)
	}
	s = parenCode.ReplaceAllString(s, " ")

	folded, offsets := locale.FoldIndex(s)
	cut := len(folded)
	for _, k := range h.vocab.address {
		if i := wordIndex(folded, k); i >= 0 && i < cut {
			cut = i
		}
	}
	for _, k := range h.vocab.institution {
		if i := strings.Index(folded, k); i >= 0 && i < cut {
			cut = i
		}
	}
	s = s[:offsets[cut]]

	s = legalSuffix.ReplaceAllString(s, "")
	s = edgePunct.ReplaceAllString(collapse(s), "")

	words := strings.Fields(s)
	if len(words) > maxSupplierNameWords {
		words = words[:maxSupplierNameWords]
	}
	s = strings.Join(words, " ")

	if len([]rune(s)) < minNameLength || !hasLetter.MatchString(s) {
		return ""
	}
	if h.vocab.invalidNames[locale.Fold(s)] {
		return ""
	}
	return s
}

func (h *headerExtractor) senderFromLabel() (string, bool) {
	for i := 0; i < h.doc.head(senderScanLines); i++ {
		folded := h.doc.folded[i]
		for _, label := range h.vocab.senderLabels {
			if wordIndex(folded, label) < 0 {
				continue
			}
			rest, _ := locale.After(h.doc.plain[i], label)
			if name, ok := h.cleanSenderName(rest); ok {
				return name, true
			}
			if strings.TrimSpace(leadingJunk.ReplaceAllString(rest, "")) == "" && i+1 < h.doc.len() {
				if name, ok := h.cleanSenderName(h.doc.plain[i+1]); ok {
					return name, true
				}
			}
		}
	}
	return "", false
}

// cleanSenderName cuts a sender candidate at the first contact or date caption
// and validates what is left
func (h *headerExtractor) cleanSenderName(raw string) (string, bool) {
	s := leadingJunk.ReplaceAllString(raw, "")

	cutAt := func(labels []string) {
		for _, l := range labels {
			if head, ok := locale.Before(s, l); ok {
				s = head
			}
		}
	}
	cutAt(h.vocab.contactLabels)
	cutAt(h.vocab.dateLabels)
	cutAt(h.vocab.senderLabels)
	if loc := looseDate.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = edgePunct.ReplaceAllString(collapse(s), "")

	n := len([]rune(s))
	switch {
	case n < 2 || n > maxSenderNameLength:
		return "", false
	case !hasLetter.MatchString(s):
		return "", false
	case locale.LooksLikeCNPJ(s):
		return "", false
	case locale.ContainsAny(locale.Fold(s), h.vocab.institution):
		return "", false
	}
	if _, ok := locale.ParseDate(s); ok {
		return "", false
	}
	return s, true
}

func (h *headerExtractor) dateFromLabel() (string, bool) {
	for i := 0; i < h.doc.head(senderScanLines); i++ {
		folded := h.doc.folded[i]
		for _, label := range h.vocab.dateLabels {
			if !strings.Contains(folded, label) {
				continue
			}
			rest, _ := locale.After(h.doc.plain[i], label)
			if date, ok := strictDateAtStart(rest); ok {
				return date, true
			}
			if i+1 < h.doc.len() {
				if date, ok := strictDateAtStart(h.doc.plain[i+1]); ok {
					return date, true
				}
			}
		}
	}
	return "", false
}

// dateFromHeaderColumn reads the date printed under the creation date caption
// of the order header row
func (h *headerExtractor) dateFromHeaderColumn() (string, bool) {
	row := h.orderHeaderRow()
	if row < 0 {
		return "", false
	}
	label, ok := labelToken(h.doc.lines[row], "criacao", "data")
	if !ok {
		return "", false
	}

	for j := row + 1; j <= row+headerLookahead && j < h.doc.len(); j++ {
		for _, t := range h.doc.lines[j].Tokens {
			if !h.aligned(t, label) {
				continue
			}
			if date, ok := strictDateAtStart(t.Token.Text); ok {
				return date, true
			}
		}
	}
	return "", false
}

// strictDateAtStart accepts s only when it opens with a date token
func strictDateAtStart(s string) (string, bool) {
	s = leadingJunk.ReplaceAllString(s, "")
	m := strictDate.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return locale.NormalizeDate(m[1])
}
