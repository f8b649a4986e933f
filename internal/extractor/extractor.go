// Package extractor rebuilds a purchase order (header fields and line items)
// from the grouped text rows of an order report PDF.
//
// Extraction is best effort: fields that cannot be read are reported as
// warnings and replaced by placeholders, never returned as errors.
package extractor

import (
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"runtime/debug"

	"github.com/a3tai/mcp-order-reader/internal/layout"
)

// Options configures an Extractor
type Options struct {
	// Keywords overrides the default vocabulary; empty lists keep the defaults
	Keywords *Keywords
	// Logger receives strategy decisions; nil discards them
	Logger *log.Logger
	// OrderNumberFallback generates the placeholder order number used when
	// none can be read. Defaults to "AUTO" plus six random digits.
	OrderNumberFallback func() string
}

// Extractor turns grouped rows into an ExtractionResult. It keeps no state
// between calls and is safe for concurrent use.
type Extractor struct {
	vocab    *vocabulary
	logger   *log.Logger
	fallback func() string
}

// New creates an Extractor. It fails only when a configured noise pattern
// does not compile.
func New(opts Options) (*Extractor, error) {
	keywords := DefaultKeywords()
	if opts.Keywords != nil {
		keywords = opts.Keywords.Merge(keywords)
	}

	vocab, err := compileVocabulary(keywords)
	if err != nil {
		return nil, err
	}

	e := &Extractor{
		vocab:    vocab,
		logger:   opts.Logger,
		fallback: opts.OrderNumberFallback,
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard, "", 0)
	}
	if e.fallback == nil {
		e.fallback = RandomOrderNumber
	}
	return e, nil
}

// RandomOrderNumber returns a placeholder order number such as AUTO482913
func RandomOrderNumber() string {
	return fmt.Sprintf("AUTO%06d", rand.IntN(1_000_000))
}

// ExtractPages groups every page into rows, concatenates them in page order
// and extracts the order from the whole document
func (e *Extractor) ExtractPages(pages []layout.Page) ExtractionResult {
	return e.Extract(layout.GroupPages(pages))
}

// Extract reads the order from already grouped rows. A panic anywhere in the
// pipeline is recovered into a single warning and an empty result.
func (e *Extractor) Extract(lines []layout.Line) (result ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("extraction panic: %v\n%s", r, debug.Stack())
			header := RawOrderHeader{OrderNumber: e.placeholderNumber()}
			result = Assemble(header, nil, []string{fmt.Sprintf("extraction failed: %v", r)})
		}
	}()

	doc := newDocument(lines)
	if doc.len() == 0 {
		header := RawOrderHeader{OrderNumber: e.fallback()}
		return Assemble(header, nil, []string{
			"document has no text; it may be a scanned image",
			fmt.Sprintf("order number not found; generated placeholder %s", header.OrderNumber),
		})
	}

	var warnings []string
	template := detectTemplate(doc, e.vocab)
	if !template.recognized() {
		warnings = append(warnings, fmt.Sprintf(
			"document layout not recognized as an order report (template: %s); extraction confidence is low", template))
	}

	headers := &headerExtractor{doc: doc, vocab: e.vocab, logger: e.logger, fallback: e.fallback}
	header := headers.extract()
	warnings = append(warnings, headers.warnings...)

	parser := &itemParser{
		doc:    doc,
		table:  &tableLocator{doc: doc, vocab: e.vocab},
		vocab:  e.vocab,
		logger: e.logger,
	}
	parser.run()
	warnings = append(warnings, parser.warnings...)
	e.logger.Printf("extracted %d items from %d item rows, %d warnings", len(parser.items), parser.itemRows, len(warnings))

	result = Assemble(header, parser.items, warnings)
	result.Template = template
	return result
}

// placeholderNumber runs the configured generator, falling back to
// RandomOrderNumber when the generator itself panics
func (e *Extractor) placeholderNumber() (number string) {
	defer func() {
		if r := recover(); r != nil {
			number = RandomOrderNumber()
		}
	}()
	return e.fallback()
}
