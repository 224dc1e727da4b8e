package usecase

import (
	"context"
	"fmt"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
	"github.com/agrocontable/liquidaciones/internal/core/ports"
	"github.com/agrocontable/liquidaciones/internal/pipeline"
)

type ReportUseCase struct {
	batches         ports.BatchRepository
	records         ports.RecordRepository
	exporter        ports.ReportExporter
	requireNonEmpty bool
}

func NewReportUseCase(
	batches ports.BatchRepository,
	records ports.RecordRepository,
	exporter ports.ReportExporter,
	requireNonEmpty bool,
) *ReportUseCase {
	return &ReportUseCase{
		batches:         batches,
		records:         records,
		exporter:        exporter,
		requireNonEmpty: requireNonEmpty,
	}
}

// BuildReports assembles the batch-level output tables. Every document in the
// batch must have finished processing first; a batch with in-flight documents
// yields ErrBatchIncomplete so callers can retry instead of serving a report
// that silently misses half the settlements.
func (uc *ReportUseCase) BuildReports(ctx context.Context, batchID string) (domain.ReportTables, error) {
	if _, err := uc.batches.GetBatch(ctx, batchID); err != nil {
		return domain.ReportTables{}, fmt.Errorf("fetch batch: %w", err)
	}

	docs, err := uc.batches.ListDocuments(ctx, batchID)
	if err != nil {
		return domain.ReportTables{}, fmt.Errorf("list batch documents: %w", err)
	}

	headers := make(map[string]domain.Header, len(docs))
	for _, doc := range docs {
		if !doc.Status.Terminal() {
			return domain.ReportTables{}, domain.WrapError(
				domain.ErrBatchIncomplete,
				"build reports",
				fmt.Errorf("document %s is %s", doc.ID, doc.Status),
			)
		}
		headers[doc.ID] = doc.Header
	}

	records, err := uc.records.ListRecordsByBatch(ctx, batchID)
	if err != nil {
		return domain.ReportTables{}, fmt.Errorf("list batch records: %w", err)
	}
	issues, err := uc.records.ListIssuesByBatch(ctx, batchID)
	if err != nil {
		return domain.ReportTables{}, fmt.Errorf("list batch issues: %w", err)
	}

	aggregates := pipeline.Aggregate(records)
	tables := pipeline.Assemble(headers, records, aggregates, issues)

	if uc.requireNonEmpty {
		tables.Issues = append(tables.Issues, emptyTableIssues(tables)...)
	}

	return tables, nil
}

func (uc *ReportUseCase) Workbook(ctx context.Context, batchID string) ([]byte, error) {
	tables, err := uc.BuildReports(ctx, batchID)
	if err != nil {
		return nil, err
	}
	out, err := uc.exporter.Workbook(tables)
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return out, nil
}

func (uc *ReportUseCase) DocumentIssues(ctx context.Context, documentID string) ([]domain.Issue, error) {
	issues, err := uc.records.ListIssuesByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document issues: %w", err)
	}
	return issues, nil
}

func emptyTableIssues(tables domain.ReportTables) []domain.Issue {
	var issues []domain.Issue
	if len(tables.Ventas) == 0 {
		issues = append(issues, domain.Issue{
			LineIndex: -1,
			Reason:    domain.IssueEmptySection,
			Detail:    "batch produced no ventas rows",
		})
	}
	if len(tables.Compras) == 0 {
		issues = append(issues, domain.Issue{
			LineIndex: -1,
			Reason:    domain.IssueEmptySection,
			Detail:    "batch produced no compras rows",
		})
	}
	return issues
}
