package domain

import "github.com/shopspring/decimal"

type TransactionType string

const (
	TxVenta  TransactionType = "VENTA"
	TxCompra TransactionType = "COMPRA"
)

type AdjustmentKind string

const (
	AdjustNone           AdjustmentKind = "NONE"
	AdjustPhysicalCredit AdjustmentKind = "PHYSICAL_CREDIT"
	AdjustMonetaryCredit AdjustmentKind = "MONETARY_CREDIT"
)

// Record is a single settlement entry extracted from one classified line.
// Amounts are exact decimals; float arithmetic never touches them. Once the
// adjustment engine finalizes a record it is never mutated: adjustments yield
// new derived records so the raw extraction stays auditable.
type Record struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	LineIndex  int             `json:"line_index"`
	Role       Role            `json:"role"`
	Type       TransactionType `json:"transaction_type"`
	Category   string          `json:"category"`
	HeadCount  int64           `json:"head_count"`
	WeightKg   decimal.Decimal `json:"weight_kg"`
	NetAmount  decimal.Decimal `json:"net_amount"`
	VATAmount  decimal.Decimal `json:"vat_amount"`
	Expense    decimal.Decimal `json:"expense_amount"`
	Adjustment AdjustmentKind  `json:"adjustment_kind"`
}

// IsAdjustment is derived from the adjustment kind, which keeps the
// is_adjustment flag and the kind from ever disagreeing.
func (r Record) IsAdjustment() bool {
	return r.Adjustment != AdjustNone && r.Adjustment != ""
}

// ExtractionResult is what the per-document pipeline hands back: the parsed
// header, the adjusted record stream, and every issue raised along the way.
type ExtractionResult struct {
	Header  Header
	Records []Record
	Issues  []Issue
}

// AggregateRow is one (role, transaction type, category) summary. GrossBase is
// the sum of net amounts only; VAT and expenses are excluded by definition,
// that is the figure the authority's control report carries.
type AggregateRow struct {
	Role      Role            `json:"role"`
	Type      TransactionType `json:"transaction_type"`
	Category  string          `json:"category"`
	Quantity  int64           `json:"quantity"`
	WeightKg  decimal.Decimal `json:"weight_kg"`
	GrossBase decimal.Decimal `json:"gross_base_amount"`
}
