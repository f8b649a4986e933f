package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/mcp-order-reader/internal/config"
	"github.com/a3tai/mcp-order-reader/internal/mcp"
	"github.com/a3tai/mcp-order-reader/internal/orders"
	"github.com/a3tai/mcp-order-reader/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the server mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// stdout carries the MCP protocol; logs only go to stderr when debugging
		log.SetFlags(log.LstdFlags)
		if cfg.IsDebug() {
			log.SetOutput(os.Stderr)
		} else {
			log.SetOutput(io.Discard)
		}
		return
	}
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// serviceLogger is the logger handed to the extraction pipeline, which
// reports its strategy decisions only in debug mode
func serviceLogger(cfg *config.Config) *log.Logger {
	if cfg.IsDebug() {
		return log.Default()
	}
	return nil
}

// newServer wires the configuration into the PDF service, order book and
// MCP server
func newServer(cfg *config.Config) (*mcp.Server, error) {
	keywords, err := cfg.Keywords()
	if err != nil {
		return nil, err
	}

	pdfService, err := pdf.NewService(pdf.ServiceOptions{
		MaxFileSize:    cfg.MaxFileSize,
		Directory:      cfg.Directory,
		CacheSize:      cfg.CacheSize,
		ExtractTimeout: cfg.ExtractTimeout,
		Keywords:       keywords,
		Logger:         serviceLogger(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF service: %w", err)
	}

	return mcp.NewServer(cfg, pdfService, orders.NewBook())
}

// run serves until ctx is cancelled or the server fails
func run(ctx context.Context, cfg *config.Config) error {
	server, err := newServer(cfg)
	if err != nil {
		return err
	}

	if cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	if err := server.Run(ctx); err != nil {
		return err
	}

	if cfg.IsServerMode() {
		log.Println("Server stopped successfully")
	}
	return nil
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	// stdio clients end the session by closing stdin; server mode stops on a signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Printf("Server error: %v", err)
		stop()
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP Order Reader\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
