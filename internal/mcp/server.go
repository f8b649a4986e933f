package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-order-reader/internal/config"
	"github.com/a3tai/mcp-order-reader/internal/descriptions"
	"github.com/a3tai/mcp-order-reader/internal/orders"
	"github.com/a3tai/mcp-order-reader/internal/pdf"
)

// shutdownTimeout bounds the graceful HTTP shutdown in server mode
const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	book       *orders.Book
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance. A nil book starts an empty one.
func NewServer(cfg *config.Config, pdfService *pdf.Service, book *orders.Book) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if book == nil {
		book = orders.NewBook()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // the tool set is fixed
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		book:       book,
		mcpServer:  mcpServer,
	}
	s.registerTools()
	return s, nil
}

func pathParam() mcp.ToolOption {
	return mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the order PDF, absolute or relative to the order directory"),
	)
}

func numberParam() mcp.ToolOption {
	return mcp.WithString("number",
		mcp.Required(),
		mcp.Description("Order number as printed on the report"),
	)
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("order_extract",
		mcp.WithDescription(descriptions.OrderExtractDescription),
		pathParam(),
	), s.handleOrderExtract)

	s.mcpServer.AddTool(mcp.NewTool("order_register",
		mcp.WithDescription(descriptions.OrderRegisterDescription),
		pathParam(),
	), s.handleOrderRegister)

	s.mcpServer.AddTool(mcp.NewTool("order_list",
		mcp.WithDescription(descriptions.OrderListDescription),
		mcp.WithString("status",
			mcp.Description("Only list orders in this status"),
			mcp.Enum(statusNames()...),
		),
	), s.handleOrderList)

	s.mcpServer.AddTool(mcp.NewTool("order_get",
		mcp.WithDescription(descriptions.OrderGetDescription),
		numberParam(),
	), s.handleOrderGet)

	s.mcpServer.AddTool(mcp.NewTool("order_receive",
		mcp.WithDescription(descriptions.OrderReceiveDescription),
		numberParam(),
		mcp.WithString("receiver", mcp.Description("Who received the goods")),
		mcp.WithNumber("line", mcp.Description("Receive only this line; omit to receive the whole order")),
		mcp.WithNumber("quantity", mcp.Description("Quantity received for the line")),
		mcp.WithString("item_observation", mcp.Description("Observation about the line")),
		mcp.WithString("observation", mcp.Description("Observation about the whole delivery")),
	), s.handleOrderReceive)

	s.mcpServer.AddTool(mcp.NewTool("order_ready",
		mcp.WithDescription(descriptions.OrderReadyDescription),
		numberParam(),
	), s.handleOrderReady)

	s.mcpServer.AddTool(mcp.NewTool("order_withdraw",
		mcp.WithDescription(descriptions.OrderWithdrawDescription),
		numberParam(),
		mcp.WithString("withdrawer", mcp.Required(), mcp.Description("Name of the person who picked up the order")),
	), s.handleOrderWithdraw)

	s.mcpServer.AddTool(mcp.NewTool("order_return",
		mcp.WithDescription(descriptions.OrderReturnDescription),
		numberParam(),
		mcp.WithString("reason", mcp.Description("Why the order went back to the supplier")),
	), s.handleOrderReturn)

	s.mcpServer.AddTool(mcp.NewTool("order_validate",
		mcp.WithDescription(descriptions.OrderValidateDescription),
		pathParam(),
	), s.handleOrderValidate)

	s.mcpServer.AddTool(mcp.NewTool("order_search",
		mcp.WithDescription(descriptions.OrderSearchDescription),
		mcp.WithString("directory", mcp.Description("Directory to search (uses the order directory if empty)")),
		mcp.WithString("query", mcp.Description("Optional name filter: words or a glob pattern")),
	), s.handleOrderSearch)

	s.mcpServer.AddTool(mcp.NewTool("order_server_info",
		mcp.WithDescription(descriptions.OrderServerInfoDescription),
	), s.handleServerInfo)
}

func statusNames() []string {
	return []string{
		string(orders.StatusPending), string(orders.StatusReceived), string(orders.StatusWithObservations),
		string(orders.StatusReadyForPickup), string(orders.StatusCompleted), string(orders.StatusReturned),
	}
}

// Handler functions
func (s *Server) handleOrderExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ExtractFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (s *Server) handleOrderRegister(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ExtractFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	order, err := s.book.Register(result.Order, result.Path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Registered order\n" + formatOrder(order)), nil
}

func (s *Server) handleOrderList(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := orders.Status(stringArg(request, "status"))
	return mcp.NewToolResultText(s.formatOrderList(status)), nil
}

func (s *Server) handleOrderGet(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	number, err := request.RequireString("number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	order, ok := s.book.Get(number)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%v: %s", orders.ErrOrderNotFound, number)), nil
	}
	return mcp.NewToolResultText(formatOrder(order)), nil
}

func (s *Server) handleOrderReceive(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	number, err := request.RequireString("number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	receipt := orders.Receipt{
		ReceiverName:      stringArg(request, "receiver"),
		GlobalObservation: stringArg(request, "observation"),
	}
	if line, ok := numberArg(request, "line"); ok {
		quantity, ok := numberArg(request, "quantity")
		if !ok {
			return mcp.NewToolResultError("quantity is required when line is given"), nil
		}
		receipt.Items = []orders.ItemReceipt{{
			LineNumber:  int(line),
			Quantity:    quantity,
			Observation: stringArg(request, "item_observation"),
		}}
	}

	return s.workflowResult(s.book.RecordReceipt(number, receipt))
}

func (s *Server) handleOrderReady(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	number, err := request.RequireString("number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.workflowResult(s.book.MarkReadyForPickup(number))
}

func (s *Server) handleOrderWithdraw(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	number, err := request.RequireString("number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	withdrawer, err := request.RequireString("withdrawer")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.workflowResult(s.book.RecordWithdrawal(number, withdrawer))
}

func (s *Server) handleOrderReturn(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	number, err := request.RequireString("number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.workflowResult(s.book.MarkReturned(number, stringArg(request, "reason")))
}

func (s *Server) workflowResult(order orders.Order, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Order %s is now %s\n", order.Number(), order.Status) + formatOrder(order)), nil
}

func (s *Server) handleOrderValidate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ValidateFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable (%d pages)", result.Path, result.Pages)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleOrderSearch(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := pdf.SearchRequest{
		Directory: stringArg(request, "directory"),
		Query:     stringArg(request, "query"),
	}

	result, err := s.pdfService.SearchDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if result.TotalCount == 0 {
		responseText := fmt.Sprintf("No PDF files found in directory: %s", result.Directory)
		if result.Query != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.Query)
		}
		return mcp.NewToolResultText(responseText), nil
	}
	return mcp.NewToolResultText(formatSearchResult(result)), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.pdfService.ServerInfo(s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatServerInfo(info)), nil
}

func stringArg(request mcp.CallToolRequest, key string) string {
	if v, ok := request.GetArguments()[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// numberArg reads a JSON number argument; clients send every number as float64
func numberArg(request mcp.CallToolRequest, key string) (float64, bool) {
	switch v := request.GetArguments()[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over the process's standard streams
func (s *Server) runStdioMode(ctx context.Context) error {
	return s.serveStdio(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serveStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	if s.config.IsDebug() {
		log.Printf("Starting order MCP server in stdio mode")
		log.Printf("Order directory: %s", s.config.Directory)
	}

	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over SSE next to the REST API until ctx ends
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(sse),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Order server listening on %s (MCP over SSE at /sse)", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sse.Shutdown(shutdownCtx); err != nil {
		log.Printf("SSE shutdown: %v", err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
