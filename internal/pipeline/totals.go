package pipeline

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

// Totals is the document-level summary block the authority prints under the
// detail grids. Used only to cross-check the extracted records.
type Totals struct {
	Present    bool
	GrossBase  decimal.Decimal
	GrossVAT   decimal.Decimal
	Expenses   decimal.Decimal
	ExpenseVAT decimal.Decimal
}

var totalsLabels = []struct {
	re    *regexp.Regexp
	field func(*Totals, decimal.Decimal)
}{
	{regexp.MustCompile(`(?i)Importe Bruto:\s*\$?\s*([0-9][0-9,]*\.[0-9]{2})`), func(t *Totals, d decimal.Decimal) { t.GrossBase = d; t.Present = true }},
	{regexp.MustCompile(`(?i)IVA s/Bruto:\s*\$?\s*([0-9][0-9,]*\.[0-9]{2})`), func(t *Totals, d decimal.Decimal) { t.GrossVAT = d }},
	{regexp.MustCompile(`(?i)Total Gastos:\s*\$?\s*([0-9][0-9,]*\.[0-9]{2})`), func(t *Totals, d decimal.Decimal) { t.Expenses = d }},
	{regexp.MustCompile(`(?i)IVA s/Gastos:\s*\$?\s*([0-9][0-9,]*\.[0-9]{2})`), func(t *Totals, d decimal.Decimal) { t.ExpenseVAT = d }},
}

// ParseTotals picks the totals block out of the raw lines.
func ParseTotals(lines []domain.RawLine, tok *Tokenizer) Totals {
	var t Totals
	for _, line := range lines {
		for _, l := range totalsLabels {
			m := l.re.FindStringSubmatch(line.Text)
			if m == nil {
				continue
			}
			d, err := tok.parseNumber(m[1])
			if err != nil {
				continue
			}
			l.field(&t, d)
		}
	}
	return t
}

// CrossCheck compares the printed gross base against the sum of extracted
// (pre-adjustment) net amounts. A mismatch is informational: it usually means
// a detail line failed extraction and points reviewers at the document.
func (t Totals) CrossCheck(documentID string, records []domain.Record) *domain.Issue {
	if !t.Present {
		return nil
	}
	sum := decimal.Zero
	for _, r := range records {
		if r.IsAdjustment() {
			continue
		}
		sum = sum.Add(r.NetAmount)
	}
	if sum.Equal(t.GrossBase) {
		return nil
	}
	return &domain.Issue{
		DocumentID: documentID,
		LineIndex:  -1,
		Reason:     domain.IssueTotalsMismatch,
		Detail:     "printed gross base " + t.GrossBase.String() + " != extracted sum " + sum.String(),
	}
}
