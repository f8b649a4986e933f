package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-order-reader/internal/orders"
	pdferrors "github.com/a3tai/mcp-order-reader/internal/pdf/errors"
)

// multipartMemory is how much of an upload is kept in memory before
// spilling to disk
const multipartMemory = 32 << 20

// Router returns the server mode HTTP surface: the REST API plus, when sse
// is set, the MCP SSE transport
func (s *Server) Router(sse *server.SSEServer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", s.handleListOrders)
		r.Post("/extract", s.handleExtractUpload)
		r.Get("/{number}", s.handleGetOrder)
		r.Post("/{number}/receipt", s.handleReceipt)
		r.Post("/{number}/ready", s.handleReady)
		r.Post("/{number}/withdrawal", s.handleWithdrawal)
		r.Post("/{number}/return", s.handleReturn)
	})

	if sse != nil {
		r.Handle("/sse", sse.SSEHandler())
		r.Handle("/message", sse.MessageHandler())
	}
	return r
}

// requestLogger logs one line per request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"server":    s.config.ServerName,
		"version":   s.config.Version,
		"directory": s.pdfService.Directory(),
		"cache":     s.pdfService.CacheStats(),
		"orders":    s.book.Counts(),
	})
}

// handleExtractUpload reads an uploaded order PDF from the "file" form
// field. With register=true the order is also added to the book.
func (s *Server) handleExtractUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.pdfService.GetMaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1024*1024) // form overhead

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > maxSize {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", maxSize), http.StatusRequestEntityTooLarge)
		return
	}

	result, err := s.pdfService.ExtractBytes(r.Context(), sanitizeFilename(header.Filename), data)
	if err != nil {
		jsonError(w, err.Error(), pdfErrorStatus(err))
		return
	}

	if r.FormValue("register") != "true" {
		writeJSON(w, http.StatusOK, result)
		return
	}

	order, err := s.book.Register(result.Order, result.Path)
	if err != nil {
		jsonError(w, err.Error(), orderErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	status := orders.Status(r.URL.Query().Get("status"))

	list := []orders.Order{}
	for _, o := range s.book.List() {
		if status == "" || o.Status == status {
			list = append(list, o)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders": list,
		"count":  len(list),
	})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	order, ok := s.book.Get(number)
	if !ok {
		jsonError(w, fmt.Sprintf("%v: %s", orders.ErrOrderNotFound, number), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	var receipt orders.Receipt
	if !decodeBody(w, r, &receipt) {
		return
	}
	writeOrder(w)(s.book.RecordReceipt(chi.URLParam(r, "number"), receipt))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeOrder(w)(s.book.MarkReadyForPickup(chi.URLParam(r, "number")))
}

func (s *Server) handleWithdrawal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Withdrawer string `json:"withdrawer"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	writeOrder(w)(s.book.RecordWithdrawal(chi.URLParam(r, "number"), body.Withdrawer))
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength != 0 && !decodeBody(w, r, &body) {
		return
	}
	writeOrder(w)(s.book.MarkReturned(chi.URLParam(r, "number"), body.Reason))
}

func writeOrder(w http.ResponseWriter) func(orders.Order, error) {
	return func(order orders.Order, err error) {
		if err != nil {
			jsonError(w, err.Error(), orderErrorStatus(err))
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func orderErrorStatus(err error) int {
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrDuplicateOrder), errors.Is(err, orders.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func pdfErrorStatus(err error) int {
	switch pdferrors.TypeOf(err) {
	case pdferrors.ErrorFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case pdferrors.ErrorInvalidFile:
		return http.StatusBadRequest
	case pdferrors.ErrorEncrypted, pdferrors.ErrorCorrupted, pdferrors.ErrorNoText:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "upload.pdf"
	}
	return name
}
