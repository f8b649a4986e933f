// Command order-extract reads one or more order report PDFs and prints the
// extracted orders, optionally with a dump of the rebuilt rows and columns.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/a3tai/mcp-order-reader/internal/config"
	"github.com/a3tai/mcp-order-reader/internal/extractor"
	"github.com/a3tai/mcp-order-reader/internal/layout"
	"github.com/a3tai/mcp-order-reader/internal/locale"
	"github.com/a3tai/mcp-order-reader/internal/pdf"
)

const (
	formatJSON = "json"
	formatText = "text"
)

type options struct {
	format       string
	debug        bool
	keywordsFile string
	maxFileSize  int64
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("order-extract", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.format, "format", formatJSON, "Output format: json, text")
	fs.BoolVar(&opts.debug, "debug", false, "Dump rebuilt rows with column indices and the column profile")
	fs.StringVar(&opts.keywordsFile, "keywords-file", "", "YAML, JSON or TOML file overriding extraction keywords")
	fs.Int64Var(&opts.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "Maximum PDF file size in bytes")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: order-extract [options] FILE.pdf [FILE.pdf...]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintf(stderr, "Error: PDF file path required\n\n")
		fs.Usage()
		return 2
	}
	if opts.format != formatJSON && opts.format != formatText {
		fmt.Fprintf(stderr, "Error: unknown format %q (must be json or text)\n", opts.format)
		return 2
	}

	var keywords *extractor.Keywords
	if opts.keywordsFile != "" {
		kw, err := config.LoadKeywords(opts.keywordsFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		keywords = kw
	}

	var logger *log.Logger
	if opts.debug {
		logger = log.New(stderr, "order-extract: ", 0)
	}

	status := 0
	for _, path := range fs.Args() {
		if err := extractOne(ctx, path, opts, keywords, logger, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", path, err)
			status = 1
		}
	}
	return status
}

func extractOne(ctx context.Context, path string, opts options, keywords *extractor.Keywords,
	logger *log.Logger, out io.Writer,
) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	svc, err := pdf.NewService(pdf.ServiceOptions{
		MaxFileSize: opts.maxFileSize,
		Directory:   filepath.Dir(abs),
		Keywords:    keywords,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	result, err := svc.ExtractFile(ctx, abs)
	if err != nil {
		return err
	}

	if opts.debug {
		decoded, err := pdf.NewDecoder(opts.maxFileSize, logger).DecodeFile(ctx, abs)
		if err != nil {
			return err
		}
		dumpLayout(out, decoded.Pages)
	}

	if opts.format == formatText {
		printText(out, result)
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// dumpLayout prints every rebuilt row with the column of each token, then
// the per-page and document column profiles
func dumpLayout(out io.Writer, pages []layout.Page) {
	lines := layout.GroupPages(pages)
	document := layout.InferColumns(lines)

	fmt.Fprintf(out, "== %d rows, %d columns ==\n", len(lines), len(document.Columns))
	for i, l := range layout.Annotate(lines, document) {
		cells := make([]string, 0, len(l.Tokens))
		for _, t := range l.Tokens {
			cells = append(cells, fmt.Sprintf("[%d]%s", t.Column, t.Token.Text))
		}
		fmt.Fprintf(out, "%3d p%d y=%6.1f  %s\n", i, l.Page, l.Y, strings.Join(cells, " "))
	}

	var merged layout.ColumnProfile
	for _, p := range pages {
		profile := layout.InferColumns(layout.GroupIntoLines(p.Tokens, p.Height))
		fmt.Fprintf(out, "page %d columns: %s\n", p.Number, formatProfile(profile))
		merged = layout.MergeProfiles(merged, profile)
	}
	fmt.Fprintf(out, "merged columns: %s\n", formatProfile(merged))
	fmt.Fprintf(out, "document columns: %s\n\n", formatProfile(document))
}

func formatProfile(p layout.ColumnProfile) string {
	parts := make([]string, 0, len(p.Columns))
	for i, c := range p.Columns {
		parts = append(parts, fmt.Sprintf("%d@%.1f(x%d)", i, c.X, c.Frequency))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

func printText(out io.Writer, result *pdf.OrderExtraction) {
	h := result.Order.Header
	fmt.Fprintf(out, "File: %s (%d pages)\n", result.Path, result.PageCount)
	fmt.Fprintf(out, "Template: %s\n", result.Order.Template)
	fmt.Fprintf(out, "Order: %s\n", h.OrderNumber)
	fmt.Fprintf(out, "Supplier: %s (%s)\n", h.SupplierName, h.SupplierTaxID)
	fmt.Fprintf(out, "Sender: %s\n", h.SenderName)
	fmt.Fprintf(out, "Sent: %s\n", h.SentDate)
	fmt.Fprintf(out, "Items:\n")
	for _, it := range result.Order.Items {
		fmt.Fprintf(out, "  %d. [%s] %s | %s %s x %s = %s\n",
			it.LineNumber, it.Code, it.Description,
			locale.FormatNumber(it.Quantity, 3), it.Unit,
			locale.FormatNumber(it.UnitPrice, 2), locale.FormatNumber(it.TotalPrice, 2))
	}
	fmt.Fprintf(out, "Total: %s\n", locale.FormatNumber(result.Order.Total(), 2))
	for _, w := range result.Order.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w)
	}
}
