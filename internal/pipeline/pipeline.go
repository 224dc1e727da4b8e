package pipeline

import (
	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

// Runner executes the per-document core: normalize, parse the header, then
// tokenize -> classify -> extract -> adjust, strictly forward. One Runner is
// safe for concurrent use; all per-document state lives in the Classifier.
type Runner struct {
	rules domain.Rules
	tok   *Tokenizer
}

func NewRunner(rules domain.Rules) *Runner {
	return &Runner{rules: rules, tok: NewTokenizer(rules)}
}

// Rules exposes the active rule set, mainly so callers can derive voucher
// types consistently with the pipeline.
func (r *Runner) Rules() domain.Rules { return r.rules }

// Run processes one document's extracted lines into its adjusted record
// stream. Per-line failures accumulate as issues and never abort the run;
// structural validation (role present, non-empty input) is the caller's job.
func (r *Runner) Run(doc *domain.Document, lines []domain.RawLine) domain.ExtractionResult {
	var res domain.ExtractionResult

	normalized := NormalizeLines(lines)
	res.Header = ParseHeader(normalized)
	res.Header.VoucherType = r.rules.VoucherType(res.Header.SettlementCode, false)

	docType := r.rules.MovementFor(res.Header.SettlementCode, doc.Role)
	classifier := NewClassifier(r.rules, doc.Role, docType)
	extractor := NewExtractor(r.rules)

	var raw []domain.Record
	hasCreditAdjustment := false
	for _, line := range normalized {
		tokens := r.tok.Tokenize(line.Text)
		cl := classifier.Classify(line, tokens)
		switch cl.Class {
		case ClassRecord, ClassAdjustment:
			rec, iss := extractor.Extract(doc, cl)
			if iss != nil {
				res.Issues = append(res.Issues, *iss)
				continue
			}
			if rec.IsAdjustment() {
				hasCreditAdjustment = true
			}
			raw = append(raw, rec)
		default:
			// Blank lines, section markers and noise carry no data.
		}
	}
	res.Issues = append(res.Issues, classifier.Finish(doc.ID)...)

	if hasCreditAdjustment {
		res.Header.VoucherType = r.rules.VoucherType(res.Header.SettlementCode, true)
	}

	totals := ParseTotals(normalized, r.tok)
	if iss := totals.CrossCheck(doc.ID, raw); iss != nil {
		res.Issues = append(res.Issues, *iss)
	}

	adjusted := ApplyAdjustments(raw)
	res.Records = adjusted.Records
	res.Issues = append(res.Issues, adjusted.Issues...)
	return res
}
