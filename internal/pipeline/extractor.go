package pipeline

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

// Column order in the body grids is fixed: category label, head count, weight,
// net amount, VAT, expenses. Adjustment lines stop after the net amount.
const (
	recordNumericFields     = 5
	adjustmentNumericFields = 3
)

// Extractor turns classified candidate lines into typed records. Failures are
// per line: the line is reported and skipped, the run continues.
type Extractor struct {
	rules domain.Rules
}

func NewExtractor(rules domain.Rules) *Extractor {
	return &Extractor{rules: rules}
}

// Extract produces exactly one record from a candidate line, or an issue
// explaining why the line was excluded.
func (e *Extractor) Extract(doc *domain.Document, cl ClassifiedLine) (domain.Record, *domain.Issue) {
	if cl.Tokens[0].Kind == TokenNumber {
		return domain.Record{}, e.issue(doc, cl, domain.IssueMalformedLine,
			"number where the category label is expected")
	}

	category, numbers := splitLine(cl.Tokens)
	code, ok := e.categoryCode(category, cl.Kind != domain.AdjustNone && cl.Kind != "")
	if !ok {
		return domain.Record{}, e.issue(doc, cl, domain.IssueExtractionError,
			fmt.Sprintf("unrecognized category %q", category))
	}

	required := recordNumericFields
	if cl.Class == ClassAdjustment {
		required = adjustmentNumericFields
	}
	if len(numbers) < required {
		return domain.Record{}, e.issue(doc, cl, domain.IssueExtractionError,
			fmt.Sprintf("need %d numeric fields, line has %d", required, len(numbers)))
	}

	head := numbers[0]
	if !head.IsInteger() || head.IsNegative() {
		return domain.Record{}, e.issue(doc, cl, domain.IssueExtractionError,
			fmt.Sprintf("head count %s is not a non-negative integer", head))
	}

	rec := domain.Record{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		LineIndex:  cl.Line.Index,
		Role:       doc.Role,
		Type:       cl.Type,
		Category:   code,
		HeadCount:  head.IntPart(),
		WeightKg:   numbers[1],
		NetAmount:  numbers[2],
		Adjustment: domain.AdjustNone,
	}
	if cl.Class == ClassAdjustment {
		rec.Adjustment = cl.Kind
	} else {
		rec.VATAmount = numbers[3]
		rec.Expense = numbers[4]
	}

	if iss := e.validateAmounts(doc, cl, rec); iss != nil {
		return domain.Record{}, iss
	}
	return rec, nil
}

func (e *Extractor) validateAmounts(doc *domain.Document, cl ClassifiedLine, rec domain.Record) *domain.Issue {
	if rec.WeightKg.IsNegative() {
		return e.issue(doc, cl, domain.IssueExtractionError, "negative weight")
	}
	if !rec.IsAdjustment() && rec.NetAmount.IsNegative() {
		return e.issue(doc, cl, domain.IssueExtractionError,
			"negative net amount on a non-adjustment record")
	}
	if rec.VATAmount.IsNegative() || rec.Expense.IsNegative() {
		return e.issue(doc, cl, domain.IssueExtractionError, "negative VAT or expense amount")
	}
	return nil
}

// categoryCode resolves the category label against the rules table. On
// adjustment lines the marker words precede the category, so every label word
// is tried, longest phrase first.
func (e *Extractor) categoryCode(label string, adjustment bool) (string, bool) {
	label = strings.ToUpper(strings.TrimSpace(label))
	if code, ok := e.rules.Categories[label]; ok {
		return code, true
	}
	words := strings.Fields(label)
	if adjustment {
		for i := len(words) - 1; i >= 0; i-- {
			if code, ok := e.rules.Categories[words[i]]; ok {
				return code, true
			}
		}
		return "", false
	}
	// Tolerate breed suffixes after the category word ("Novillos Brangus").
	if len(words) > 0 {
		if code, ok := e.rules.Categories[words[0]]; ok {
			return code, true
		}
	}
	return "", false
}

func splitLine(tokens []Token) (category string, numbers []decimal.Decimal) {
	labels := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenLabel:
			if len(numbers) == 0 {
				labels = append(labels, tok.Text)
			}
		case TokenNumber:
			numbers = append(numbers, tok.Number)
		}
	}
	return strings.Join(labels, " "), numbers
}

func (e *Extractor) issue(doc *domain.Document, cl ClassifiedLine, reason domain.IssueReason, detail string) *domain.Issue {
	return &domain.Issue{
		DocumentID: doc.ID,
		LineIndex:  cl.Line.Index,
		Reason:     reason,
		Detail:     detail,
	}
}
