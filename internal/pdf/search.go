package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tai/mcp-order-reader/internal/locale"
)

// Search finds order PDFs under a directory
type Search struct {
	validator *Validator
}

// NewSearch creates a search that skips files the validator rejects on size
// or name alone
func NewSearch(validator *Validator) *Search {
	return &Search{validator: validator}
}

// SearchDirectory walks req.Directory and returns the PDFs whose names match
// req.Query. Hidden directories and symlinks leaving the directory are
// skipped.
func (s *Search) SearchDirectory(req SearchRequest) (*SearchResult, error) {
	if req.Directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	root, err := filepath.Abs(req.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("directory does not exist: %s", req.Directory)
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate directory symlinks: %w", err)
	}

	match := queryMatcher(req.Query)
	files := []FileInfo{}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped, not fatal
			return nil
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if req.Limit > 0 && len(files) >= req.Limit {
			return filepath.SkipAll
		}

		if !isPDFName(d.Name()) || !match(d.Name()) {
			return nil
		}
		if !within(path, realRoot) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if s.validator.CheckInfo(path, info) != nil {
			return nil
		}

		files = append(files, FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	return &SearchResult{
		Files:      files,
		TotalCount: len(files),
		Directory:  root,
		Query:      req.Query,
	}, nil
}

// within reports whether path, after resolving symlinks, stays under root
func within(path, root string) bool {
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, real)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// queryMatcher builds the file name filter for a search query. Glob queries
// use filepath.Match; anything else must have every query word inside some
// word of the name, ignoring case and accents.
func queryMatcher(query string) func(name string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return func(string) bool { return true }
	}

	if strings.ContainsAny(query, "*?[") {
		return func(name string) bool {
			ok, err := filepath.Match(query, name)
			return err == nil && ok
		}
	}

	queryWords := splitIntoWords(locale.Fold(query))
	return func(name string) bool {
		folded := locale.Fold(strings.TrimSuffix(strings.ToLower(name), ".pdf"))
		if strings.Contains(folded, locale.Fold(query)) {
			return true
		}

		words := splitIntoWords(folded)
		for _, q := range queryWords {
			found := false
			for _, w := range words {
				if strings.Contains(w, q) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
}

func splitIntoWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(" _-.()[]", r)
	})
}
