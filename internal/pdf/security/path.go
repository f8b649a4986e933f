// Package security confines file paths received from clients to the
// directory the server was started with.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator resolves client supplied paths against a root directory
// and rejects anything that leaves it, including through symlinks
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator rooted at dir. The directory does
// not need to exist yet.
func NewPathValidator(dir string) (*PathValidator, error) {
	if dir == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	return &PathValidator{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute configured directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve turns path into an absolute path inside the root. Relative paths
// are taken relative to the root.
func (v *PathValidator) Resolve(path string) (string, error) {
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("path contains a null byte")
	}
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	clean := filepath.Clean(path)

	if !v.contains(clean) {
		return "", fmt.Errorf("path is outside configured directory: %s", path)
	}
	return clean, nil
}

// ValidatePath checks that path stays within the root
func (v *PathValidator) ValidatePath(path string) error {
	_, err := v.Resolve(path)
	return err
}

// ValidateDirectory checks that dir stays within the root and, when it
// exists, is a directory
func (v *PathValidator) ValidateDirectory(dir string) error {
	resolved, err := v.Resolve(dir)
	if err != nil {
		return err
	}

	info, err := os.Stat(resolved)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dir)
	}
	return nil
}

// contains checks clean against the root both lexically and after
// resolving symlinks on either side
func (v *PathValidator) contains(clean string) bool {
	if !under(clean, v.root) {
		return false
	}

	realRoot := v.root
	if resolved, err := filepath.EvalSymlinks(v.root); err == nil {
		realRoot = resolved
	}

	// a path that does not exist yet is judged by its nearest existing ancestor
	existing := clean
	for {
		realPath, err := filepath.EvalSymlinks(existing)
		if err == nil {
			return under(realPath, realRoot)
		}
		if !os.IsNotExist(err) {
			return false
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return true
		}
		existing = parent
	}
}

func under(path, dir string) bool {
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator))
}
