package extractor

// NotFound is the terminal value of a header field no strategy could resolve
const NotFound = "Not found"

// RawOrderHeader carries the order-level fields. While extraction runs an empty
// string means unresolved; Assemble replaces those with NotFound.
type RawOrderHeader struct {
	OrderNumber   string `json:"orderNumber"`
	SupplierName  string `json:"supplierName"`
	SupplierTaxID string `json:"supplierTaxId"`
	SenderName    string `json:"senderName"`
	SentDate      string `json:"sentDate"`
}

// LineItem is one row of the order's product/service table
type LineItem struct {
	LineNumber   int     `json:"lineNumber"`
	Code         string  `json:"code"`
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	UnitPrice    float64 `json:"unitPrice"`
	TotalPrice   float64 `json:"totalPrice"`
	DeliveryDate string  `json:"deliveryDate,omitempty"`
}

// Template is the document family recognized from the letterhead and headings
type Template string

const (
	TemplateStandardOrder Template = "standard-order"
	TemplateOrderReport   Template = "order-report"
	TemplatePurchaseOrder Template = "purchase-order"
	TemplateInvoice       Template = "invoice"
	TemplateUnknown       Template = "unknown"
)

// ExtractionResult is everything recovered from one document
type ExtractionResult struct {
	Header   RawOrderHeader `json:"header"`
	Items    []LineItem     `json:"items"`
	Warnings []string       `json:"warnings"`
	Template Template       `json:"template"`
}

// Total sums the total price of every item
func (r ExtractionResult) Total() float64 {
	var sum float64
	for _, it := range r.Items {
		sum += it.TotalPrice
	}
	return sum
}
