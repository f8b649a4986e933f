package pdf

import (
	"github.com/a3tai/mcp-order-reader/internal/extractor"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// SearchRequest asks for order PDFs under a directory. Query is matched
// against file names, ignoring case and accents; a query containing glob
// characters is matched as a pattern instead.
type SearchRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
	Limit     int    `json:"limit,omitempty"`
}

// SearchResult lists the PDFs found by a search
type SearchResult struct {
	Files      []FileInfo `json:"files"`
	TotalCount int        `json:"total_count"`
	Directory  string     `json:"directory"`
	Query      string     `json:"query,omitempty"`
}

// ValidationResult is the verdict on one file
type ValidationResult struct {
	Valid     bool   `json:"valid"`
	Path      string `json:"path"`
	Pages     int    `json:"pages,omitempty"`
	Size      int64  `json:"size,omitempty"`
	Encrypted bool   `json:"encrypted,omitempty"`
	Message   string `json:"message,omitempty"`
}

// OrderExtraction is the outcome of reading one order PDF: the extracted
// order plus where it came from
type OrderExtraction struct {
	Path      string                     `json:"path,omitempty"`
	Size      int64                      `json:"size"`
	PageCount int                        `json:"page_count"`
	Cached    bool                       `json:"cached"`
	Order     extractor.ExtractionResult `json:"order"`
}
