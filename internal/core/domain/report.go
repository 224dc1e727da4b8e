package domain

import "github.com/shopspring/decimal"

type IssueReason string

const (
	IssueMalformedLine       IssueReason = "MALFORMED_LINE"
	IssueExtractionError     IssueReason = "EXTRACTION_ERROR"
	IssueUnmatchedAdjustment IssueReason = "UNMATCHED_ADJUSTMENT"
	IssueEmptySection        IssueReason = "EMPTY_SECTION"
	IssueTotalsMismatch      IssueReason = "TOTALS_MISMATCH"
	IssueAmbiguousAdjustment IssueReason = "AMBIGUOUS_ADJUSTMENT"
)

// Issue is one entry of the warning side channel. Issues accumulate per
// document and never abort a run; accountants review them by hand.
type Issue struct {
	DocumentID string      `json:"document_id,omitempty"`
	LineIndex  int         `json:"line_index"`
	Reason     IssueReason `json:"reason"`
	Detail     string      `json:"detail,omitempty"`
}

// GridRow is one adjusted record in the Ventas or Compras grid, with the
// document header fields accountants key their ledgers on.
type GridRow struct {
	DocumentID  string          `json:"document_id"`
	VoucherType string          `json:"voucher_type,omitempty"`
	IssueDate   string          `json:"issue_date,omitempty"`
	Category    string          `json:"category"`
	HeadCount   int64           `json:"head_count"`
	WeightKg    decimal.Decimal `json:"weight_kg"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	Expense     decimal.Decimal `json:"expense_amount"`
}

// VATLedgerRow is one VENTA record restricted to the VAT ledger fields, with
// the net split by rate bucket the way the sales ledger wants it.
type VATLedgerRow struct {
	DocumentID string          `json:"document_id"`
	Category   string          `json:"category"`
	NetReduced decimal.Decimal `json:"net_10_5"`
	VATReduced decimal.Decimal `json:"vat_10_5"`
	NetGeneral decimal.Decimal `json:"net_21"`
	VATGeneral decimal.Decimal `json:"vat_21"`
	Exempt     decimal.Decimal `json:"exempt"`
}

// ExpenseRow is the per-category expense/commission summary.
type ExpenseRow struct {
	Type     TransactionType `json:"transaction_type"`
	Category string          `json:"category"`
	Expense  decimal.Decimal `json:"expense_amount"`
}

// ReportTables is the full batch output: the five logical tables the export
// collaborators consume, plus the accumulated issues for manual review.
type ReportTables struct {
	Ventas          []GridRow      `json:"ventas"`
	Compras         []GridRow      `json:"compras"`
	VATLedger       []VATLedgerRow `json:"libro_iva_ventas"`
	Expenses        []ExpenseRow   `json:"gastos_comisiones"`
	ControlHacienda []AggregateRow `json:"control_hacienda"`
	Issues          []Issue        `json:"issues,omitempty"`
}
