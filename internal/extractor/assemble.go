package extractor

// Assemble shapes the final result: unresolved header fields become NotFound
// and the item and warning lists are never nil
func Assemble(header RawOrderHeader, items []LineItem, warnings []string) ExtractionResult {
	placeholder := func(s string) string {
		if s == "" {
			return NotFound
		}
		return s
	}

	header.OrderNumber = placeholder(header.OrderNumber)
	header.SupplierName = placeholder(header.SupplierName)
	header.SupplierTaxID = placeholder(header.SupplierTaxID)
	header.SenderName = placeholder(header.SenderName)
	header.SentDate = placeholder(header.SentDate)

	if items == nil {
		items = []LineItem{}
	}
	if warnings == nil {
		warnings = []string{}
	}

	return ExtractionResult{
		Header:   header,
		Items:    items,
		Warnings: warnings,
		Template: TemplateUnknown,
	}
}
