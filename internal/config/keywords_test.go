package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-order-reader/internal/extractor"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadKeywordsYAML(t *testing.T) {
	path := writeFile(t, "keywords.yaml", `
institution:
  - escola modelo
  - rua das flores
sender_labels:
  - requisitante
table_header:
  - [item, seq]
  - [descricao]
  - [qtd]
`)

	kw, err := LoadKeywords(path)
	require.NoError(t, err)

	defaults := extractor.DefaultKeywords()
	assert.Equal(t, []string{"escola modelo", "rua das flores"}, kw.Institution)
	assert.Equal(t, []string{"requisitante"}, kw.SenderLabels)
	assert.Equal(t, [][]string{{"item", "seq"}, {"descricao"}, {"qtd"}}, kw.TableHeader)
	assert.Equal(t, defaults.Units, kw.Units)
	assert.Equal(t, defaults.Footer, kw.Footer)
}

func TestLoadKeywordsJSON(t *testing.T) {
	path := writeFile(t, "keywords.json", `{"units": ["UN", "CX"], "footer": ["total do pedido"]}`)

	kw, err := LoadKeywords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"UN", "CX"}, kw.Units)
	assert.Equal(t, []string{"total do pedido"}, kw.Footer)
	assert.Equal(t, extractor.DefaultKeywords().Institution, kw.Institution)
}

func TestLoadKeywordsErrors(t *testing.T) {
	_, err := LoadKeywords(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "noise:\n  - \"(unclosed\"\n")
	_, err = LoadKeywords(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid noise pattern")
}

func TestConfigKeywords(t *testing.T) {
	cfg := DefaultConfig()
	kw, err := cfg.Keywords()
	require.NoError(t, err)
	assert.Nil(t, kw)

	cfg.KeywordsFile = writeFile(t, "kw.toml", "units = [\"UN\"]\n")
	kw, err = cfg.Keywords()
	require.NoError(t, err)
	require.NotNil(t, kw)
	assert.Equal(t, []string{"UN"}, kw.Units)
}
