package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

// VAT at or above this share of the net amount is the general rate; anything
// positive below it is the reduced livestock rate.
var generalRateThreshold = decimal.NewFromFloat(0.15)

// Assemble reshapes the adjusted records and aggregate rows into the five
// logical tables the export collaborators consume. An empty table is a valid
// outcome: a settlement batch may legitimately contain only one of
// Ventas/Compras.
func Assemble(
	headers map[string]domain.Header,
	records []domain.Record,
	aggregates []domain.AggregateRow,
	issues []domain.Issue,
) domain.ReportTables {
	t := domain.ReportTables{
		Ventas:          []domain.GridRow{},
		Compras:         []domain.GridRow{},
		VATLedger:       []domain.VATLedgerRow{},
		Expenses:        []domain.ExpenseRow{},
		ControlHacienda: aggregates,
		Issues:          issues,
	}

	type expKey struct {
		typ      domain.TransactionType
		category string
	}
	expenses := make(map[expKey]decimal.Decimal)
	var expOrder []expKey

	for _, r := range records {
		if r.IsAdjustment() {
			continue
		}
		row := gridRow(headers, r)
		switch r.Type {
		case domain.TxVenta:
			t.Ventas = append(t.Ventas, row)
			t.VATLedger = append(t.VATLedger, vatLedgerRow(r))
		case domain.TxCompra:
			t.Compras = append(t.Compras, row)
		}

		k := expKey{typ: r.Type, category: r.Category}
		if _, ok := expenses[k]; !ok {
			expOrder = append(expOrder, k)
		}
		expenses[k] = expenses[k].Add(r.Expense)
	}

	for _, k := range expOrder {
		t.Expenses = append(t.Expenses, domain.ExpenseRow{
			Type:     k.typ,
			Category: k.category,
			Expense:  expenses[k],
		})
	}
	sort.SliceStable(t.Expenses, func(i, j int) bool {
		if t.Expenses[i].Category != t.Expenses[j].Category {
			return t.Expenses[i].Category < t.Expenses[j].Category
		}
		return t.Expenses[i].Type == domain.TxVenta && t.Expenses[j].Type != domain.TxVenta
	})

	return t
}

func gridRow(headers map[string]domain.Header, r domain.Record) domain.GridRow {
	h := headers[r.DocumentID]
	return domain.GridRow{
		DocumentID:  r.DocumentID,
		VoucherType: h.VoucherType,
		IssueDate:   h.IssueDate,
		Category:    r.Category,
		HeadCount:   r.HeadCount,
		WeightKg:    r.WeightKg,
		NetAmount:   r.NetAmount,
		VATAmount:   r.VATAmount,
		Expense:     r.Expense,
	}
}

// vatLedgerRow buckets one VENTA record by its effective VAT rate: zero VAT
// is exempt, otherwise the VAT/net ratio separates the reduced (10.5) and
// general (21) rates.
func vatLedgerRow(r domain.Record) domain.VATLedgerRow {
	row := domain.VATLedgerRow{
		DocumentID: r.DocumentID,
		Category:   r.Category,
		NetReduced: decimal.Zero,
		VATReduced: decimal.Zero,
		NetGeneral: decimal.Zero,
		VATGeneral: decimal.Zero,
		Exempt:     decimal.Zero,
	}
	switch {
	case r.VATAmount.IsZero():
		row.Exempt = r.NetAmount
	case r.NetAmount.IsZero() || r.VATAmount.Div(r.NetAmount).GreaterThanOrEqual(generalRateThreshold):
		row.NetGeneral = r.NetAmount
		row.VATGeneral = r.VATAmount
	default:
		row.NetReduced = r.NetAmount
		row.VATReduced = r.VATAmount
	}
	return row
}
