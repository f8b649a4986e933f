package pdf

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/a3tai/mcp-order-reader/internal/extractor"
	"github.com/a3tai/mcp-order-reader/internal/pdf/security"
)

// ServiceOptions configures a Service
type ServiceOptions struct {
	MaxFileSize int64
	Directory   string
	CacheSize   int
	// ExtractTimeout bounds one extraction; zero means no limit
	ExtractTimeout time.Duration
	// Keywords overrides the extractor vocabulary; nil keeps the defaults
	Keywords *extractor.Keywords
	Logger   *log.Logger
}

// Service reads purchase orders from PDF files by orchestrating the
// validator, decoder, extractor and result cache
type Service struct {
	maxFileSize   int64
	timeout       time.Duration
	decoder       *Decoder
	validator     *Validator
	search        *Search
	extractor     *extractor.Extractor
	cache         *ResultCache
	pathValidator *security.PathValidator
	logger        *log.Logger
}

// NewService creates a new PDF service with all components
func NewService(opts ServiceOptions) (*Service, error) {
	if opts.MaxFileSize <= 0 {
		return nil, fmt.Errorf("maxFileSize must be greater than 0")
	}

	pathValidator, err := security.NewPathValidator(opts.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	ext, err := extractor.New(extractor.Options{Keywords: opts.Keywords, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	validator := NewValidator(opts.MaxFileSize)
	return &Service{
		maxFileSize:   opts.MaxFileSize,
		timeout:       opts.ExtractTimeout,
		decoder:       NewDecoder(opts.MaxFileSize, logger),
		validator:     validator,
		search:        NewSearch(validator),
		extractor:     ext,
		cache:         NewResultCache(opts.CacheSize),
		pathValidator: pathValidator,
		logger:        logger,
	}, nil
}

// ExtractFile reads the order in the PDF at path. Results are cached per
// file version, so re-reading an unchanged file is free.
func (s *Service) ExtractFile(ctx context.Context, path string) (*OrderExtraction, error) {
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	key := CacheKey(resolved, info)
	if cached, ok := s.cache.Get(key); ok {
		hit := *cached
		hit.Cached = true
		return &hit, nil
	}

	if _, err := s.validator.Check(resolved); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	decoded, err := s.decoder.DecodeFile(ctx, resolved)
	if err != nil {
		return nil, err
	}

	result := s.extract(decoded)
	result.Path = resolved
	result.Size = info.Size()

	s.cache.Put(key, result)
	s.logger.Printf("extracted order %s from %s (%d items, %d warnings)",
		result.Order.Header.OrderNumber, resolved, len(result.Order.Items), len(result.Order.Warnings))
	return result, nil
}

// ExtractBytes reads the order in an uploaded PDF. Uploads are not cached.
func (s *Service) ExtractBytes(ctx context.Context, name string, data []byte) (*OrderExtraction, error) {
	if _, err := s.validator.CheckBytes(data); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	decoded, err := s.decoder.DecodeBytes(ctx, data)
	if err != nil {
		return nil, err
	}

	result := s.extract(decoded)
	result.Path = name
	result.Size = int64(len(data))
	return result, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// extract runs the pure pipeline and puts decoding warnings ahead of the
// extraction ones
func (s *Service) extract(decoded *Decoded) *OrderExtraction {
	order := s.extractor.ExtractPages(decoded.Pages)
	if len(decoded.Warnings) > 0 {
		order.Warnings = append(append([]string{}, decoded.Warnings...), order.Warnings...)
	}
	return &OrderExtraction{
		PageCount: decoded.PageCount,
		Order:     order,
	}
}

// ValidateFile reports whether path is a readable order PDF
func (s *Service) ValidateFile(path string) (*ValidationResult, error) {
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	result := s.validator.ValidateFile(resolved)
	return result, nil
}

// SearchDirectory searches for order PDFs, defaulting to the configured
// directory
func (s *Service) SearchDirectory(req SearchRequest) (*SearchResult, error) {
	if req.Directory == "" {
		req.Directory = s.pathValidator.Root()
	}

	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	resolved, err := s.pathValidator.Resolve(req.Directory)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Directory = resolved

	return s.search.SearchDirectory(req)
}

// CacheStats returns the extraction cache statistics
func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}

// Directory returns the directory files must live under
func (s *Service) Directory() string {
	return s.pathValidator.Root()
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}
