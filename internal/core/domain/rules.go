package domain

// Rules make the set of recognized document layouts data, not code: section
// markers drive the classifier state machine, the movement table maps a
// settlement code and declared role to a transaction type, and the category
// table bounds what the extractor accepts. Everything here can be overridden
// from the rules file without touching the pipeline.
type Rules struct {
	VentasMarkers      []string `yaml:"ventas_markers"`
	ComprasMarkers     []string `yaml:"compras_markers"`
	AdjustmentsMarkers []string `yaml:"adjustments_markers"`
	FooterMarkers      []string `yaml:"footer_markers"`

	PhysicalKeywords []string `yaml:"physical_keywords"`
	MonetaryKeywords []string `yaml:"monetary_keywords"`

	Movements []MovementRule `yaml:"movements"`

	// Categories maps accepted category labels (upper case) to their
	// canonical code. Labels and codes both appear in source documents.
	Categories map[string]string `yaml:"categories"`

	ThousandsSeparator string `yaml:"thousands_separator"`
	DecimalSeparator   string `yaml:"decimal_separator"`
}

// MovementRule resolves the transaction type for the given settlement codes
// per declared role. An empty mapping means the rule does not decide for that
// role and the classifier falls back to the section-based role mapping.
type MovementRule struct {
	Codes     []int           `yaml:"codes"`
	Issuer    TransactionType `yaml:"issuer"`
	Recipient TransactionType `yaml:"recipient"`
}

// MovementFor returns the code-mapped transaction type, or "" when no rule
// decides for this code and role.
func (r Rules) MovementFor(code int, role Role) TransactionType {
	for _, rule := range r.Movements {
		for _, c := range rule.Codes {
			if c != code {
				continue
			}
			if role == RoleIssuer {
				return rule.Issuer
			}
			return rule.Recipient
		}
	}
	return ""
}

// SectionType maps a body section to the transaction type it yields for the
// declared role. The issuer's sales section is the recipient's purchases on
// the counterpart document, so the mapping flips with the role.
func SectionType(section TransactionType, role Role) TransactionType {
	if role == RoleIssuer {
		return section
	}
	if section == TxVenta {
		return TxCompra
	}
	return TxVenta
}

// VoucherType derives the internal ledger voucher code from the settlement
// code and whether the document carried credit adjustments, mirroring the
// authority's comprobante taxonomy.
func (r Rules) VoucherType(code int, creditAdjustment bool) string {
	switch code {
	case 186, 188:
		if creditAdjustment {
			return "CN"
		}
		return "CD"
	case 180:
		if creditAdjustment {
			return "LA"
		}
		return "CV"
	case 183, 185:
		if creditAdjustment {
			return "LN"
		}
		return "LC"
	case 190, 191:
		if creditAdjustment {
			return "CN"
		}
		return "VC"
	}
	return "OTRO"
}

// DefaultRules reproduces the layouts the clearing authority currently
// issues. The separators match the printed number format (1,234.56).
func DefaultRules() Rules {
	return Rules{
		VentasMarkers:      []string{"VENTAS", "CUENTA DE VENTA"},
		ComprasMarkers:     []string{"COMPRAS", "LIQUIDACION DE COMPRA", "LIQUIDACIÓN DE COMPRA"},
		AdjustmentsMarkers: []string{"AJUSTES", "AJUSTE"},
		FooterMarkers:      []string{"IMPORTE BRUTO", "IMPORTE NETO", "TOTALES"},

		PhysicalKeywords: []string{"FISICO", "FÍSICO"},
		MonetaryKeywords: []string{"MONETARIO", "FINANCIERO"},

		Movements: []MovementRule{
			{Codes: []int{186, 188}, Issuer: TxCompra, Recipient: TxVenta},
			{Codes: []int{180}, Recipient: TxVenta},
			{Codes: []int{183, 185}, Recipient: TxCompra},
			{Codes: []int{190, 191}, Issuer: TxVenta, Recipient: TxCompra},
		},

		Categories: map[string]string{
			"NOV":         "NOV",
			"NOVILLOS":    "NOV",
			"NT":          "NT",
			"NOVILLITOS":  "NT",
			"VQ":          "VQ",
			"VAQUILLONAS": "VQ",
			"VC":          "VC",
			"VACAS":       "VC",
			"TR":          "TR",
			"TOROS":       "TR",
			"TE":          "TE",
			"TERNEROS":    "TE",
			"TA":          "TA",
			"TERNERAS":    "TA",
		},

		ThousandsSeparator: ",",
		DecimalSeparator:   ".",
	}
}
