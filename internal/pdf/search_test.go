package pdf

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string][]byte) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, content, 0o644))
	}
}

func names(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	sort.Strings(out)
	return out
}

func TestSearch_SearchDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string][]byte{
		"pedido_60726.pdf":          make([]byte, 1024),
		"Pedido Compra Março.pdf":   make([]byte, 512),
		"sub/relatorio-60999.PDF":   make([]byte, 256),
		".hidden/pedido_oculto.pdf": make([]byte, 256),
		"notas.txt":                 []byte("not a pdf"),
		"vazio.pdf":                 {},
		"grande.pdf":                make([]byte, 4096),
	})

	search := NewSearch(NewValidator(2048))

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "all", want: []string{"Pedido Compra Março.pdf", "pedido_60726.pdf", "relatorio-60999.PDF"}},
		{name: "substring", query: "60726", want: []string{"pedido_60726.pdf"}},
		{name: "accent and case insensitive", query: "MARCO", want: []string{"Pedido Compra Março.pdf"}},
		{name: "all words", query: "compra pedido", want: []string{"Pedido Compra Março.pdf"}},
		{name: "glob", query: "pedido_*.pdf", want: []string{"pedido_60726.pdf"}},
		{name: "no match", query: "fatura", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := search.SearchDirectory(SearchRequest{Directory: dir, Query: tt.query})
			require.NoError(t, err)

			assert.Equal(t, tt.want, names(result.Files))
			assert.Equal(t, len(tt.want), result.TotalCount)
			assert.Equal(t, tt.query, result.Query)
		})
	}
}

func TestSearch_Limit(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string][]byte{
		"a.pdf": {1}, "b.pdf": {1}, "c.pdf": {1},
	})

	result, err := NewSearch(NewValidator(0)).SearchDirectory(SearchRequest{Directory: dir, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Files, 2)
}

func TestSearch_Errors(t *testing.T) {
	search := NewSearch(NewValidator(0))

	_, err := search.SearchDirectory(SearchRequest{})
	assert.Error(t, err)

	_, err = search.SearchDirectory(SearchRequest{Directory: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestSearch_SkipsSymlinkEscape(t *testing.T) {
	outside := t.TempDir()
	writeFiles(t, outside, map[string][]byte{"secret.pdf": {1}})

	dir := t.TempDir()
	writeFiles(t, dir, map[string][]byte{"inside.pdf": {1}})
	if err := os.Symlink(filepath.Join(outside, "secret.pdf"), filepath.Join(dir, "link.pdf")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	result, err := NewSearch(NewValidator(0)).SearchDirectory(SearchRequest{Directory: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"inside.pdf"}, names(result.Files))
}
