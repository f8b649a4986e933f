package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/a3tai/mcp-order-reader/internal/layout"
)

func locatorFor(t *testing.T, lines ...layout.Line) *tableLocator {
	t.Helper()
	e := newTestExtractor(t)
	return &tableLocator{doc: newDocument(lines), vocab: e.vocab}
}

func TestLocateByCaptions(t *testing.T) {
	loc := locatorFor(t, standardOrder()...).locate()

	assert.True(t, loc.Found)
	assert.True(t, loc.HeaderMatched)
	assert.Equal(t, 8, loc.HeaderIndex)
	assert.Equal(t, 9, loc.Start)
	assert.Equal(t, 14, loc.End)
	assert.Equal(t, 0, loc.ItemColumn)
}

func TestLocateRequiresItemRowsAfterCaptions(t *testing.T) {
	lines := []layout.Line{
		row(10, c(10, "Item Quantidade Total: conferir com o setor")),
		row(22, c(10, "texto livre")),
		row(34, c(10, "mais texto")),
		row(46, c(10, "ainda texto")),
		row(58, c(10, "fim")),
	}
	loc := locatorFor(t, lines...).locate()
	assert.False(t, loc.Found)
}

func TestLocateFallsBackToFirstItemShape(t *testing.T) {
	var lines []layout.Line
	for i := 0; i < 12; i++ {
		lines = append(lines, row(float64(i*12), c(10, "cabeçalho")))
	}
	lines = append(lines,
		row(200, c(10, "1 CANETA 10 UN 2,50 25,00")),
		row(212, c(10, "Valor Total do Pedido: 25,00")),
	)

	loc := locatorFor(t, lines...).locate()
	assert.True(t, loc.Found)
	assert.False(t, loc.HeaderMatched)
	assert.Equal(t, 12, loc.Start)
	assert.Equal(t, 11, loc.HeaderIndex)
	assert.Equal(t, 13, loc.End)
}

func TestIsFooter(t *testing.T) {
	long := "Total " + strings.Repeat("descrição extensa ", 8)
	tl := locatorFor(t,
		row(10, c(10, "Total Geral: 1.234,00")),
		row(22, c(10, "Subtotal: 10,00")),
		row(34, c(10, "(Mil e duzentos reais)")),
		row(46, c(10, long)),
		row(58, c(10, "3 KIT TOTAL FLEX 1 UN 5,00 5,00")),
	)

	assert.True(t, tl.isFooter(0))
	assert.True(t, tl.isFooter(1))
	assert.True(t, tl.isFooter(2))
	assert.False(t, tl.isFooter(3))
	assert.False(t, tl.isFooter(4))
}

func TestIsPageNoise(t *testing.T) {
	tl := locatorFor(t,
		row(10, c(10, "Página 2 de 3")),
		row(22, c(10, "Impresso em: 24/04/2025 10:32")),
		row(34, c(10, "SENAC - Administração Regional")),
		row(46, c(10, "Linha Produto/Serviço Quantidade Preço Unitário Total")),
		row(58, c(10, "2/3")),
		row(70, c(10, "4 PAPEL A4 500 FOLHAS 5 PCT 22,90 114,50")),
		row(82, c(10, "PONTA FINA")),
		row(94, c(10, "25,00")),
	)

	for i := 0; i < 5; i++ {
		assert.True(t, tl.isPageNoise(i), "row %d", i)
	}
	assert.False(t, tl.isPageNoise(5))
	assert.False(t, tl.isPageNoise(6))
	assert.False(t, tl.isPageNoise(7))
}

func TestIsComment(t *testing.T) {
	comments := []string{
		"OBS: material urgente, comprado em segunda cotação",
		"REQ 4471 - solicitado por coordenação",
		"CAM CENTRO - REQ 123",
		"Materiais para o curso de culinária",
		"** Itens da linha 3",
		"*** atenção",
		"(entrega parcial)",
		"CNPJ: 12.345.678/0001-90",
		"Fone: 19 3333-4444",
		"E-mail: compras@example.com",
		"- entregar no almoxarifado",
		"Solicitado por Maria",
	}
	var lines []layout.Line
	for i, s := range comments {
		lines = append(lines, row(float64(i*12), c(10, s)))
	}
	lines = append(lines,
		row(500, c(10, "CAMISETA POLO")),
		row(512, c(10, "1 REQ 99 FORMULARIO 10 UN 1,00 10,00")),
	)

	tl := locatorFor(t, lines...)
	for i := range comments {
		assert.True(t, tl.isComment(i), comments[i])
	}
	assert.False(t, tl.isComment(len(comments)))
	assert.False(t, tl.isComment(len(comments)+1))
}

func TestCaptionCount(t *testing.T) {
	tl := locatorFor(t, row(0, c(0, "x")))

	assert.Equal(t, 5, tl.captionCount("linha produto/servico quantidade preco unitario total"))
	assert.Equal(t, 3, tl.captionCount("item descricao qtde"))
	assert.Equal(t, 1, tl.captionCount("valor total"))
	assert.Equal(t, 0, tl.captionCount("itemizado"))
}
