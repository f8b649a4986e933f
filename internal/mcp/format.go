package mcp

import (
	"fmt"
	"strings"

	"github.com/a3tai/mcp-order-reader/internal/locale"
	"github.com/a3tai/mcp-order-reader/internal/orders"
	"github.com/a3tai/mcp-order-reader/internal/pdf"
)

const dateLayout = "02/01/2006 15:04"

func formatOrder(o orders.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order: %s (%s)\n", o.Number(), o.Status)
	fmt.Fprintf(&b, "ID: %s\n", o.ID)
	fmt.Fprintf(&b, "Supplier: %s (%s)\n", o.Header.SupplierName, o.Header.SupplierTaxID)
	fmt.Fprintf(&b, "Sender: %s\n", o.Header.SenderName)
	fmt.Fprintf(&b, "Sent: %s\n", o.Header.SentDate)
	if o.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", o.Source)
	}
	if o.ReceiveDate != nil {
		fmt.Fprintf(&b, "Received: %s by %s\n", o.ReceiveDate.Format(dateLayout), o.ReceiverName)
	}
	if o.WithdrawalDate != nil {
		fmt.Fprintf(&b, "Withdrawn: %s by %s\n", o.WithdrawalDate.Format(dateLayout), o.Withdrawer)
	}
	if o.GlobalObservation != "" {
		fmt.Fprintf(&b, "Observation: %s\n", o.GlobalObservation)
	}

	fmt.Fprintf(&b, "\nItems (%d):\n", len(o.Items))
	for _, it := range o.Items {
		fmt.Fprintf(&b, "%d. [%s] %s - %s %s x R$ %s = R$ %s",
			it.LineNumber, it.Code, it.Description,
			locale.FormatNumber(it.Quantity, 3), it.Unit,
			money(it.UnitPrice), money(it.TotalPrice))
		if it.Received {
			fmt.Fprintf(&b, " (received %s)", locale.FormatNumber(it.ReceivedQuantity, 3))
		}
		if it.Observation != "" {
			fmt.Fprintf(&b, " - %s", it.Observation)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total: R$ %s\n", money(o.Total()))

	if len(o.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range o.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

func (s *Server) formatOrderList(status orders.Status) string {
	var b strings.Builder

	list := s.book.List()
	shown := 0
	for _, o := range list {
		if status != "" && o.Status != status {
			continue
		}
		shown++
		fmt.Fprintf(&b, "%d. %s  %-18s %s  R$ %s  (%d items)\n",
			shown, o.Number(), o.Status, o.Header.SupplierName, money(o.Total()), len(o.Items))
	}

	header := fmt.Sprintf("Registered orders: %d\n", len(list))
	if status != "" {
		header = fmt.Sprintf("Orders in status %s: %d of %d\n", status, shown, len(list))
	}
	if shown == 0 {
		header += "No orders to show\n"
	} else {
		header += "\n"
	}

	counts := s.book.Counts()
	b.WriteString("\nBy status:")
	for _, name := range statusNames() {
		if n := counts[orders.Status(name)]; n > 0 {
			fmt.Fprintf(&b, " %s=%d", name, n)
		}
	}

	stats := s.pdfService.CacheStats()
	fmt.Fprintf(&b, "\nExtraction cache: %d/%d entries, %d hits, %d misses (%.0f%% hit rate)\n",
		stats.Size, stats.Capacity, stats.Hits, stats.Misses, stats.HitRate)

	return header + b.String()
}

func formatSearchResult(result *pdf.SearchResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.Query != "" {
		text += fmt.Sprintf("Search query: %s\n", result.Query)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}
	return text
}

func formatServerInfo(info *pdf.ServerInfo) string {
	text := fmt.Sprintf("%s v%s - Server Information\n", info.ServerName, info.Version)
	text += fmt.Sprintf("Order Directory: %s\n", info.Directory)
	text += fmt.Sprintf("Max File Size: %d MB\n", info.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("Extraction Cache: %d/%d entries, %.0f%% hit rate\n\n",
		info.Cache.Size, info.Cache.Capacity, info.Cache.HitRate)

	if len(info.Files) > 0 {
		text += fmt.Sprintf("Order PDFs (%d shown):\n", len(info.Files))
		for i, file := range info.Files {
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		if info.Truncated {
			text += "   ... and more, use order_search to list them all\n"
		}
	} else {
		text += "Order PDFs: none found in the order directory\n"
	}

	text += "\nAvailable Tools:\n"
	for _, tool := range info.Tools {
		text += fmt.Sprintf("• %s: %s\n", tool.Name, tool.Description)
	}
	return text
}

func money(v float64) string {
	return locale.FormatNumber(v, 2)
}
