package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindCNPJ(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"CNPJ: 12.345.678/0001-90", "12.345.678/0001-90", true},
		{"Fornecedor 12345678000190 ACME", "12345678000190", true},
		{"fone 1932345678", "", false},
		{"123456780001901", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := FindCNPJ(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCNPJ(t *testing.T) {
	assert.Equal(t, "12.345.678/0001-90", FormatCNPJ("12345678000190"))
	assert.Equal(t, "12.345.678/0001-90", FormatCNPJ("12.345.678/0001-90"))
	assert.Equal(t, "123", FormatCNPJ(" 123 "))
}

func TestLooksLikeCNPJ(t *testing.T) {
	assert.True(t, LooksLikeCNPJ("12.345.678/0001-90"))
	assert.False(t, LooksLikeCNPJ("ACME 12.345.678/0001-90"))
}
