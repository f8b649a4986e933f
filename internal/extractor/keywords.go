package extractor

import (
	"fmt"
	"regexp"

	"github.com/a3tai/mcp-order-reader/internal/locale"
)

// Keywords holds every vocabulary list the heuristics match against. Entries
// are matched case and diacritic insensitively. Noise entries are regular
// expressions applied to the folded line.
type Keywords struct {
	// Institution identifies the buyer's own letterhead and delivery blocks
	Institution []string `mapstructure:"institution" json:"institution"`
	// Address marks the start of a street address inside a name
	Address []string `mapstructure:"address" json:"address"`
	// OrderHeader must all appear in the row that heads the order number
	OrderHeader []string `mapstructure:"order_header" json:"order_header"`
	// SupplierLabels introduce the supplier block
	SupplierLabels []string `mapstructure:"supplier_labels" json:"supplier_labels"`
	// InvalidSupplierNames are label words never accepted as a name
	InvalidSupplierNames []string `mapstructure:"invalid_supplier_names" json:"invalid_supplier_names"`
	// SenderLabels introduce the buyer's name
	SenderLabels []string `mapstructure:"sender_labels" json:"sender_labels"`
	// ContactLabels end a sender name written on the same line
	ContactLabels []string `mapstructure:"contact_labels" json:"contact_labels"`
	// DateLabels introduce the order's creation date
	DateLabels []string `mapstructure:"date_labels" json:"date_labels"`
	// TableHeader lists the item table column captions; each entry holds
	// alternatives for one column
	TableHeader [][]string `mapstructure:"table_header" json:"table_header"`
	// Footer starts the row that closes the item table
	Footer []string `mapstructure:"footer" json:"footer"`
	// PageMarkers start rows repeated on every page (pagination, print stamps)
	PageMarkers []string `mapstructure:"page_markers" json:"page_markers"`
	// Noise are patterns of comment rows inside the item table
	Noise []string `mapstructure:"noise" json:"noise"`
	// Units are the recognized units of measure
	Units []string `mapstructure:"units" json:"units"`
}

// DefaultKeywords returns the vocabulary of the SENAC-SP order report family
func DefaultKeywords() Keywords {
	return Keywords{
		Institution: []string{
			"senac", "serviço nacional", "aprendizagem comercial",
			"local de faturamento", "local de entrega",
			"03.709.814/0057-42", "rua sacramento", "campinas - sp - cep: 13010-210",
		},
		Address: []string{
			"rua", "avenida", "av.", "av", "alameda", "al.", "praça", "rodovia", "estrada",
			"travessa", "r.", "jardim", "jd.", "jd", "bairro", "cep:", "cep",
		},
		OrderHeader:    []string{"pedido numero", "revisao", "data criacao"},
		SupplierLabels: []string{"fornecedor", "razão social", "emitente"},
		InvalidSupplierNames: []string{
			"fornecedor", "observação", "observações", "fone", "telefone", "email", "e-mail",
			"cnpj", "endereço", "contato", "local de entrega", "local de faturamento",
			"not found", "razão social",
		},
		SenderLabels: []string{
			"comprador", "solicitante", "contato", "elaborado por", "criado por", "responsável",
		},
		ContactLabels: []string{"e-mail:", "email:", "fone:", "tel.:", "tel:", "cel.:", "cel:", "ramal:", "telefone:"},
		DateLabels: []string{
			"data criação", "data de criação", "data emissão", "emitido em",
			"data do pedido", "data da compra", "dt. pedido",
		},
		TableHeader: [][]string{
			{"linha", "item"},
			{"produto/serviço", "produto", "serviço", "descrição"},
			{"quantidade", "qtde", "qtd"},
			{"unitário", "preço unit", "vlr. unit"},
			{"total"},
		},
		Footer: []string{
			"total geral", "valor total do pedido", "valor total", "subtotal", "total:",
			"soma total", "observações:", "condições de pagamento",
		},
		PageMarkers: []string{
			"página", "pag.", "pág.", "fls", "folha", "impresso em", "data de emissão",
			"dt. emissão", "data emissão", "local de faturamento", "local de entrega",
			"comprador:", "relatório de pedido de c", "pedido número revisão data criação",
		},
		Noise: []string{
			`^(?:cam\b|req\s*\d+|solicitado\s+por|compra\s+emergencial|pedido\s+urgente|-)`,
			`cam centro\s*-\s*req\s*\d+`,
			`materiais?\s+(?:para|d[oa])\s+(?:o\s+)?curso`,
			`^\*\*\s*(?:itens?\s+da?\s+linha|frete)`,
			`^\*\*\*`,
			`^\(.+\)$`,
			`^cnpj:`,
			`^fone:`,
			`^e-?mail:`,
			`^obs\b`,
			`^observac`,
		},
		Units: []string{
			"UN", "PC", "PCT", "CX", "KG", "L", "M", "CM", "MM", "METRO", "HORA", "HL", "BALDE",
			"BD", "PACOTE", "UNIDADE", "UNID", "UND", "MONTHLY", "ROLO", "RL", "BOBINA", "MENSAL",
			"GALAO", "GL", "LATA", "LT", "FRASCO", "FR", "SACO", "SC", "RESMA", "RM", "CENTO",
			"CT", "KIT", "KT", "JOGO", "JG", "PAR", "PÇ", "SV",
		},
	}
}

// Merge returns k with every empty list replaced by the one from fallback
func (k Keywords) Merge(fallback Keywords) Keywords {
	pick := func(v, d []string) []string {
		if len(v) == 0 {
			return d
		}
		return v
	}

	out := Keywords{
		Institution:          pick(k.Institution, fallback.Institution),
		Address:              pick(k.Address, fallback.Address),
		OrderHeader:          pick(k.OrderHeader, fallback.OrderHeader),
		SupplierLabels:       pick(k.SupplierLabels, fallback.SupplierLabels),
		InvalidSupplierNames: pick(k.InvalidSupplierNames, fallback.InvalidSupplierNames),
		SenderLabels:         pick(k.SenderLabels, fallback.SenderLabels),
		ContactLabels:        pick(k.ContactLabels, fallback.ContactLabels),
		DateLabels:           pick(k.DateLabels, fallback.DateLabels),
		TableHeader:          k.TableHeader,
		Footer:               pick(k.Footer, fallback.Footer),
		PageMarkers:          pick(k.PageMarkers, fallback.PageMarkers),
		Noise:                pick(k.Noise, fallback.Noise),
		Units:                pick(k.Units, fallback.Units),
	}
	if len(out.TableHeader) == 0 {
		out.TableHeader = fallback.TableHeader
	}
	return out
}

// Validate checks that the noise patterns compile
func (k Keywords) Validate() error {
	for _, p := range k.Noise {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid noise pattern %q: %w", p, err)
		}
	}
	return nil
}

// vocabulary is the folded, compiled form of Keywords used while extracting
type vocabulary struct {
	institution    []string
	address        []string
	orderHeader    []string
	supplierLabels []string
	invalidNames   map[string]bool
	senderLabels   []string
	contactLabels  []string
	dateLabels     []string
	tableHeader    [][]string
	footer         []string
	pageMarkers    []string
	noise          []*regexp.Regexp
	unitSet        map[string]bool
}

func compileVocabulary(k Keywords) (*vocabulary, error) {
	v := &vocabulary{
		institution:    locale.FoldAll(k.Institution),
		address:        locale.FoldAll(k.Address),
		orderHeader:    locale.FoldAll(k.OrderHeader),
		supplierLabels: locale.FoldAll(k.SupplierLabels),
		invalidNames:   make(map[string]bool),
		senderLabels:   locale.FoldAll(k.SenderLabels),
		contactLabels:  locale.FoldAll(k.ContactLabels),
		dateLabels:     locale.FoldAll(k.DateLabels),
		footer:         locale.FoldAll(k.Footer),
		pageMarkers:    locale.FoldAll(k.PageMarkers),
		unitSet:        make(map[string]bool),
	}

	for _, n := range locale.FoldAll(k.InvalidSupplierNames) {
		v.invalidNames[n] = true
	}
	for _, group := range k.TableHeader {
		if folded := locale.FoldAll(group); len(folded) > 0 {
			v.tableHeader = append(v.tableHeader, folded)
		}
	}
	for _, p := range k.Noise {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid noise pattern %q: %w", p, err)
		}
		v.noise = append(v.noise, re)
	}

	for _, u := range k.Units {
		if u != "" {
			v.unitSet[locale.Fold(u)] = true
		}
	}

	return v, nil
}

// isUnit reports whether s is a known unit of measure
func (v *vocabulary) isUnit(s string) bool {
	return v.unitSet[locale.Fold(s)]
}
