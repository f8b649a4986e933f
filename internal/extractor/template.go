package extractor

import "strings"

// templateScanLines is how much of the document top is inspected
const templateScanLines = 40

// DetectTemplate classifies a document from the folded text of its first rows
func DetectTemplate(folded []string, keywords Keywords) Template {
	vocab, err := compileVocabulary(keywords.Merge(DefaultKeywords()))
	if err != nil {
		return TemplateUnknown
	}
	doc := &document{folded: folded, plain: folded}
	return detectTemplate(doc, vocab)
}

func detectTemplate(doc *document, vocab *vocabulary) Template {
	n := min(templateScanLines, len(doc.folded))
	top := strings.Join(doc.folded[:n], "\n")

	hasOrderHeader := len(vocab.orderHeader) > 0
	for _, k := range vocab.orderHeader {
		if !strings.Contains(top, k) {
			hasOrderHeader = false
			break
		}
	}

	hasTableHeader := false
	table := &tableLocator{doc: doc, vocab: vocab}
	for i := range len(doc.folded) {
		if table.isTableHeader(i) {
			hasTableHeader = true
			break
		}
	}

	switch {
	case hasOrderHeader && hasTableHeader:
		return TemplateStandardOrder
	case strings.Contains(top, "relatorio de pedido"):
		return TemplateOrderReport
	case strings.Contains(top, "nota fiscal") || strings.Contains(top, "danfe") || strings.Contains(top, "fatura"):
		return TemplateInvoice
	case strings.Contains(top, "pedido") || strings.Contains(top, "ordem de compra"):
		return TemplatePurchaseOrder
	}
	return TemplateUnknown
}

// recognized reports whether the extractor was built for this template
func (t Template) recognized() bool {
	return t == TemplateStandardOrder || t == TemplateOrderReport
}
