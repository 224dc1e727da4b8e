package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// ReplaceDocumentResults swaps the document's records and issues in one
// transaction so a reprocessed document never shows duplicated rows.
func (r *RecordRepository) ReplaceDocumentResults(ctx context.Context, documentID string, records []domain.Record, issues []domain.Issue) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin results tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete old records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM issues WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete old issues: %w", err)
	}

	for _, rec := range records {
		_, err := tx.ExecContext(ctx, `
INSERT INTO records (
	id, document_id, line_index, role, tx_type, category, head_count, weight_kg, net_amount, vat_amount, expense_amount, adjustment
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
			rec.ID, documentID, rec.LineIndex, string(rec.Role), string(rec.Type), rec.Category,
			rec.HeadCount, rec.WeightKg.String(), rec.NetAmount.String(), rec.VATAmount.String(),
			rec.Expense.String(), string(rec.Adjustment),
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	for _, issue := range issues {
		_, err := tx.ExecContext(ctx, `
INSERT INTO issues (document_id, line_index, reason, detail) VALUES ($1,$2,$3,$4)
`, documentID, issue.LineIndex, string(issue.Reason), issue.Detail)
		if err != nil {
			return fmt.Errorf("insert issue: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results tx: %w", err)
	}
	return nil
}

func (r *RecordRepository) ListRecordsByBatch(ctx context.Context, batchID string) ([]domain.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT r.id, r.document_id, r.line_index, r.role, r.tx_type, r.category, r.head_count, r.weight_kg, r.net_amount, r.vat_amount, r.expense_amount, r.adjustment
FROM records r
JOIN documents d ON d.id = r.document_id
WHERE d.batch_id = $1
ORDER BY d.created_at, r.line_index
`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query batch records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch records: %w", err)
	}
	return records, nil
}

func (r *RecordRepository) ListIssuesByBatch(ctx context.Context, batchID string) ([]domain.Issue, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT i.document_id, i.line_index, i.reason, i.detail
FROM issues i
JOIN documents d ON d.id = i.document_id
WHERE d.batch_id = $1
ORDER BY d.created_at, i.line_index
`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query batch issues: %w", err)
	}
	defer rows.Close()
	return collectIssues(rows)
}

func (r *RecordRepository) ListIssuesByDocument(ctx context.Context, documentID string) ([]domain.Issue, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT document_id, line_index, reason, detail
FROM issues
WHERE document_id = $1
ORDER BY line_index
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query document issues: %w", err)
	}
	defer rows.Close()
	return collectIssues(rows)
}

func scanRecord(rows *sql.Rows) (domain.Record, error) {
	var rec domain.Record
	var role, txType, adjustment string
	var weight, net, vat, expense string

	err := rows.Scan(
		&rec.ID, &rec.DocumentID, &rec.LineIndex, &role, &txType, &rec.Category,
		&rec.HeadCount, &weight, &net, &vat, &expense, &adjustment,
	)
	if err != nil {
		return domain.Record{}, fmt.Errorf("scan record: %w", err)
	}

	rec.Role = domain.Role(role)
	rec.Type = domain.TransactionType(txType)
	rec.Adjustment = domain.AdjustmentKind(adjustment)

	for _, field := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"weight_kg", weight, &rec.WeightKg},
		{"net_amount", net, &rec.NetAmount},
		{"vat_amount", vat, &rec.VATAmount},
		{"expense_amount", expense, &rec.Expense},
	} {
		d, err := decimal.NewFromString(field.raw)
		if err != nil {
			return domain.Record{}, fmt.Errorf("parse %s %q: %w", field.name, field.raw, err)
		}
		*field.dst = d
	}
	return rec, nil
}

func collectIssues(rows *sql.Rows) ([]domain.Issue, error) {
	var issues []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		var reason string
		if err := rows.Scan(&issue.DocumentID, &issue.LineIndex, &reason, &issue.Detail); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issue.Reason = domain.IssueReason(reason)
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issues: %w", err)
	}
	return issues, nil
}
