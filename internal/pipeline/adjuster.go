package pipeline

import (
	"fmt"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

// AdjustResult is the adjusted record stream plus whatever could not be
// applied cleanly. Input records are never mutated; base records are copied
// before any subtraction so the raw extraction stays traceable.
type AdjustResult struct {
	Records []domain.Record
	Issues  []domain.Issue
}

// ApplyAdjustments folds credit adjustments into the base records sharing
// their (transaction type, category). Physical credits reduce head count,
// weight and net amount together; monetary credits reduce the net amount
// only. Multiple adjustments against one category accumulate; replaying the
// same adjustment line is de-duplicated; an adjustment with no base record is
// reported and excluded, never silently absorbed.
func ApplyAdjustments(records []domain.Record) AdjustResult {
	var out AdjustResult
	out.Records = make([]domain.Record, 0, len(records))

	var adjustments []domain.Record
	for _, r := range records {
		if r.IsAdjustment() {
			adjustments = append(adjustments, r)
			continue
		}
		out.Records = append(out.Records, r)
	}

	applied := make(map[string]bool)
	for _, adj := range adjustments {
		key := fmt.Sprintf("%s#%d", adj.DocumentID, adj.LineIndex)
		if applied[key] {
			continue
		}
		applied[key] = true

		matches := matchIndexes(out.Records, adj)
		if len(matches) == 0 {
			out.Issues = append(out.Issues, domain.Issue{
				DocumentID: adj.DocumentID,
				LineIndex:  adj.LineIndex,
				Reason:     domain.IssueUnmatchedAdjustment,
				Detail:     fmt.Sprintf("no %s record for category %s", adj.Type, adj.Category),
			})
			continue
		}
		if len(matches) > 1 {
			// The matching key is (transaction type, category); finer-grained
			// sub-codes are not part of it, so flag rather than guess.
			out.Issues = append(out.Issues, domain.Issue{
				DocumentID: adj.DocumentID,
				LineIndex:  adj.LineIndex,
				Reason:     domain.IssueAmbiguousAdjustment,
				Detail: fmt.Sprintf("%d base records match %s/%s, applied to the first",
					len(matches), adj.Type, adj.Category),
			})
		}

		i := matches[0]
		base := out.Records[i]
		switch adj.Adjustment {
		case domain.AdjustPhysicalCredit:
			base.HeadCount -= adj.HeadCount
			base.WeightKg = base.WeightKg.Sub(adj.WeightKg)
			base.NetAmount = base.NetAmount.Sub(adj.NetAmount)
		case domain.AdjustMonetaryCredit:
			base.NetAmount = base.NetAmount.Sub(adj.NetAmount)
		}
		out.Records[i] = base

		if base.HeadCount < 0 || base.WeightKg.IsNegative() {
			out.Issues = append(out.Issues, domain.Issue{
				DocumentID: adj.DocumentID,
				LineIndex:  adj.LineIndex,
				Reason:     domain.IssueTotalsMismatch,
				Detail:     fmt.Sprintf("credit exceeds base for %s/%s", adj.Type, adj.Category),
			})
		}
	}

	return out
}

func matchIndexes(records []domain.Record, adj domain.Record) []int {
	var idx []int
	for i, r := range records {
		if r.DocumentID == adj.DocumentID && r.Type == adj.Type && r.Category == adj.Category {
			idx = append(idx, i)
		}
	}
	return idx
}
