package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	// Extraction Tools
	OrderExtractDescription = `Read a purchase order report PDF and return its header and line items as JSON.

**When to use:** You have an order report (Relatório de Pedido de Compra) and need the order number, supplier, buyer, dates and the itemized table.

**Why it's useful:** Works on the text layer of the PDF, rebuilds rows and columns from glyph positions and keeps going when fields are missing. Problems show up as warnings instead of failures.

**Examples:**
• "Extract the order in pedidos/60726.pdf"
• "Which items and totals are in the April order from Papelaria Modelo?"

**Output:** JSON with header (order_number, supplier name and CNPJ, sender, sent date, total), items (line, code, description, quantity, unit, unit price, total), template and warnings.

**Best practices:** Read the warnings. A template other than standard-order or order-report means the document may not be an order report. Scanned PDFs without a text layer are rejected.`

	OrderRegisterDescription = `Extract an order PDF and register it in the order book for receiving and pickup tracking.

**When to use:** A new order arrived and should be tracked through receipt, pickup and withdrawal.

**Examples:**
• "Register pedidos/60726.pdf"

**Best practices:** Registering the same order number twice is refused. Orders without a readable number get a provisional AUTO number and are never treated as duplicates.`

	OrderListDescription = `List registered orders with their status, supplier and totals.

**When to use:** Reviewing what is pending, received, ready for pickup, completed or returned.

**Examples:**
• "List all orders"
• "Which orders are ready_for_pickup?"

**Best practices:** Filter with status (pending, received, with_observations, ready_for_pickup, completed, returned). The footer reports extraction cache statistics.`

	OrderGetDescription = `Show one registered order, its items and its receiving history.

**When to use:** You know the order number and need its current state.

**Examples:**
• "Show order 60726"`

	OrderReceiveDescription = `Record the receipt of a registered order, fully or one line at a time.

**When to use:** Goods arrived at the warehouse.

**Examples:**
• "Order 60726 arrived complete, received by Ana"
• "Line 2 of order 60726 arrived with 3 units, box damaged"

**Best practices:** Without a line every item is marked fully received. A short quantity or any observation moves the order to with_observations. Observations mentioning a return (devolvido, avaria, não conforme) mark it returned.`

	OrderReadyDescription = `Mark a received order as ready for pickup by the requester.

**Examples:**
• "Order 60726 is ready for pickup"`

	OrderWithdrawDescription = `Record who withdrew a received order, completing it.

**Examples:**
• "João Silva picked up order 60726"`

	OrderReturnDescription = `Mark an order as returned to the supplier, with an optional reason.

**Examples:**
• "Order 60726 was returned, wrong paper size"

**Best practices:** Orders already withdrawn cannot be returned.`

	// File Tools
	OrderValidateDescription = `Check that a file is a readable, unencrypted PDF before extracting it.

**When to use:** Handling files of unknown origin or troubleshooting an extraction failure.

**Examples:**
• "Is pedidos/60726.pdf a valid PDF?"

**Best practices:** Encrypted PDFs and files without a text layer cannot be extracted.`

	OrderSearchDescription = `Find order PDFs in the configured directory.

**When to use:** You need the path of an order report before extracting it.

**Examples:**
• "Find PDFs with 60726 in the name"
• "List pedido_*.pdf files"

**Best practices:** Queries match accent-insensitively and word by word. Glob patterns such as pedido_*.pdf are also accepted.`

	OrderServerInfoDescription = `Get server status, configuration and the tools available.

**When to use:** Starting work with the server or troubleshooting.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"order_extract":     OrderExtractDescription,
	"order_register":    OrderRegisterDescription,
	"order_list":        OrderListDescription,
	"order_get":         OrderGetDescription,
	"order_receive":     OrderReceiveDescription,
	"order_ready":       OrderReadyDescription,
	"order_withdraw":    OrderWithdrawDescription,
	"order_return":      OrderReturnDescription,
	"order_validate":    OrderValidateDescription,
	"order_search":      OrderSearchDescription,
	"order_server_info": OrderServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the available tool names in alphabetical order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary returns the first line of a tool's description
func Summary(toolName string) string {
	desc := GetToolDescription(toolName)
	for i, r := range desc {
		if r == '\n' {
			return desc[:i]
		}
	}
	return desc
}
