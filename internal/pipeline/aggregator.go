package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

// Aggregate groups the adjusted record stream by (role, transaction type,
// category). The gross base is the sum of net amounts alone; VAT and expense
// amounts never enter it. Groups that net out to zero are kept so
// zero-activity categories stay visible in the control report. Output order
// is category ascending, VENTA before COMPRA, issuer before recipient;
// deterministic so report runs are reproducible.
func Aggregate(records []domain.Record) []domain.AggregateRow {
	type key struct {
		role     domain.Role
		typ      domain.TransactionType
		category string
	}

	groups := make(map[key]*domain.AggregateRow)
	order := make([]key, 0)
	for _, r := range records {
		if r.IsAdjustment() {
			continue
		}
		k := key{role: r.Role, typ: r.Type, category: r.Category}
		row, ok := groups[k]
		if !ok {
			row = &domain.AggregateRow{
				Role:      k.role,
				Type:      k.typ,
				Category:  k.category,
				WeightKg:  decimal.Zero,
				GrossBase: decimal.Zero,
			}
			groups[k] = row
			order = append(order, k)
		}
		row.Quantity += r.HeadCount
		row.WeightKg = row.WeightKg.Add(r.WeightKg)
		row.GrossBase = row.GrossBase.Add(r.NetAmount)
	}

	out := make([]domain.AggregateRow, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		if out[i].Type != out[j].Type {
			return out[i].Type == domain.TxVenta
		}
		return out[i].Role < out[j].Role
	})
	return out
}
