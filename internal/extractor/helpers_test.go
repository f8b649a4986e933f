package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-order-reader/internal/layout"
)

type cell struct {
	x    float64
	text string
}

func c(x float64, text string) cell {
	return cell{x: x, text: text}
}

// row builds an already grouped line at top-down y
func row(y float64, cells ...cell) layout.Line {
	l := layout.Line{Y: y}
	for _, cl := range cells {
		l.Tokens = append(l.Tokens, layout.PositionedToken{Text: cl.text, X: cl.x, Y: y, Height: 10})
	}
	return l
}

func fixedOrderNumber() string {
	return "AUTO000001"
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(Options{OrderNumberFallback: fixedOrderNumber})
	require.NoError(t, err)
	return e
}

// standardOrder is a two-item-plus-service order report in the layout the
// extractor targets
func standardOrder() []layout.Line {
	return []layout.Line{
		row(10, c(10, "SENAC - Serviço Nacional de Aprendizagem Comercial")),
		row(22, c(10, "Relatório de Pedido de Compra")),
		row(34, c(10, "Pedido Número"), c(120, "Revisão"), c(200, "Data Criação")),
		row(46, c(10, "60726"), c(120, "0"), c(200, "24-ABR-25")),
		row(58, c(10, "Fornecedor:"), c(80, "12.345.678/0001-90")),
		row(70, c(10, "PAPELARIA MODELO LTDA"), c(200, "Rua das Flores, 100")),
		row(82, c(10, "Local de Faturamento: SENAC CAMPINAS")),
		row(94, c(10, "Comprador: MARIA SOUZA"), c(200, "Fone: 19 3333-4444")),
		row(106, c(10, "Linha"), c(40, "Produto/Serviço"), c(300, "Quantidade"), c(340, "UN"),
			c(380, "Preço Unitário"), c(440, "Total")),
		row(118, c(10, "1"), c(40, "001234."), c(90, "CANETA AZUL"), c(300, "10,000"), c(340, "UN"),
			c(380, "2,50"), c(440, "25,00")),
		row(130, c(90, "20 UNIDADES PONTA FINA")),
		row(142, c(10, "2"), c(40, "005678."), c(90, "PAPEL A4 500 FOLHAS"), c(300, "5,000"), c(340, "PCT"),
			c(380, "22,90"), c(440, "114,50")),
		row(154, c(10, "REQ 4471 - solicitado por coordenação")),
		row(166, c(10, "3"), c(40, "009999."), c(90, "SERVIÇO DE ENCADERNAÇÃO"), c(300, "R$"), c(340, "1,000"),
			c(380, "150,00"), c(440, "150,00")),
		row(178, c(10, "Total Geral:"), c(440, "289,50")),
	}
}
