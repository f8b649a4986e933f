package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordsMerge(t *testing.T) {
	defaults := DefaultKeywords()
	custom := Keywords{
		Institution: []string{"prefeitura de sorocaba"},
		TableHeader: [][]string{{"seq"}, {"material"}, {"qtd"}},
	}

	merged := custom.Merge(defaults)
	assert.Equal(t, []string{"prefeitura de sorocaba"}, merged.Institution)
	assert.Equal(t, custom.TableHeader, merged.TableHeader)
	assert.Equal(t, defaults.Footer, merged.Footer)
	assert.Equal(t, defaults.Units, merged.Units)
	assert.Equal(t, defaults.Noise, merged.Noise)

	empty := Keywords{}.Merge(defaults)
	assert.Equal(t, defaults, empty)
}

func TestKeywordsValidate(t *testing.T) {
	require.NoError(t, DefaultKeywords().Validate())

	bad := Keywords{Noise: []string{`^ok$`, `(unclosed`}}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(unclosed")
}

func TestCompileVocabularyFoldsUnits(t *testing.T) {
	v, err := compileVocabulary(DefaultKeywords())
	require.NoError(t, err)

	assert.Contains(t, v.supplierLabels, "razao social")
	assert.True(t, v.invalidNames["observacao"])
	assert.True(t, v.isUnit("pct"))
	assert.True(t, v.isUnit("PÇ"))
	assert.False(t, v.isUnit("CANETA"))
	assert.False(t, v.isUnit(""))
}
