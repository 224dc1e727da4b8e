package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

type exporterFake struct {
	tables *domain.ReportTables
	err    error
}

func (f *exporterFake) Workbook(tables domain.ReportTables) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tables = &tables
	return []byte("xlsx"), nil
}

func TestReportUseCaseBatchIncomplete(t *testing.T) {
	batches := &batchRepoFake{docs: []domain.Document{
		{ID: "doc-1", Status: domain.StatusReady},
		{ID: "doc-2", Status: domain.StatusProcessing},
	}}
	uc := NewReportUseCase(batches, &recordRepoFake{}, &exporterFake{}, false)

	_, err := uc.BuildReports(context.Background(), "batch-1")
	if !domain.IsKind(err, domain.ErrBatchIncomplete) {
		t.Fatalf("expected batch incomplete kind, got %v", err)
	}
}

func TestReportUseCaseBuildReports(t *testing.T) {
	batches := &batchRepoFake{docs: []domain.Document{
		{ID: "doc-1", Status: domain.StatusReady, Header: domain.Header{VoucherType: "CV", IssueDate: "05/03/2024"}},
		{ID: "doc-2", Status: domain.StatusFailed},
	}}
	records := &recordRepoFake{
		listRecords: []domain.Record{{
			ID:         "rec-1",
			DocumentID: "doc-1",
			Role:       domain.RoleIssuer,
			Type:       domain.TxVenta,
			Category:   "NOV",
			HeadCount:  10,
			WeightKg:   decimal.RequireFromString("4500"),
			NetAmount:  decimal.RequireFromString("900000"),
			VATAmount:  decimal.RequireFromString("94500"),
			Expense:    decimal.RequireFromString("18000"),
		}},
		listIssues: []domain.Issue{{DocumentID: "doc-2", LineIndex: -1, Reason: domain.IssueExtractionError}},
	}
	uc := NewReportUseCase(batches, records, &exporterFake{}, false)

	tables, err := uc.BuildReports(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("BuildReports() error = %v", err)
	}
	if len(tables.Ventas) != 1 {
		t.Fatalf("expected one ventas row, got %d", len(tables.Ventas))
	}
	row := tables.Ventas[0]
	if row.VoucherType != "CV" || row.IssueDate != "05/03/2024" {
		t.Fatalf("expected header fields joined onto grid row, got %+v", row)
	}
	if len(tables.Compras) != 0 {
		t.Fatalf("expected no compras rows, got %d", len(tables.Compras))
	}
	if len(tables.VATLedger) != 1 {
		t.Fatalf("expected one vat ledger row, got %d", len(tables.VATLedger))
	}
	vat := tables.VATLedger[0]
	if !vat.NetReduced.Equal(decimal.RequireFromString("900000")) || !vat.NetGeneral.IsZero() {
		t.Fatalf("expected net in the 10.5%% bucket, got %+v", vat)
	}
	if len(tables.ControlHacienda) != 1 {
		t.Fatalf("expected one control hacienda row, got %d", len(tables.ControlHacienda))
	}
	if len(tables.Issues) != 1 {
		t.Fatalf("expected issues carried through, got %d", len(tables.Issues))
	}
}

func TestReportUseCaseRequireNonEmptyTables(t *testing.T) {
	batches := &batchRepoFake{docs: []domain.Document{{ID: "doc-1", Status: domain.StatusReady}}}
	uc := NewReportUseCase(batches, &recordRepoFake{}, &exporterFake{}, true)

	tables, err := uc.BuildReports(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("BuildReports() error = %v", err)
	}
	if len(tables.Issues) != 2 {
		t.Fatalf("expected empty-section issues for both grids, got %d", len(tables.Issues))
	}
	for _, issue := range tables.Issues {
		if issue.Reason != domain.IssueEmptySection {
			t.Fatalf("expected empty section reason, got %s", issue.Reason)
		}
	}
}

func TestReportUseCaseWorkbook(t *testing.T) {
	batches := &batchRepoFake{docs: []domain.Document{{ID: "doc-1", Status: domain.StatusReady}}}
	exporter := &exporterFake{}
	uc := NewReportUseCase(batches, &recordRepoFake{}, exporter, false)

	out, err := uc.Workbook(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("Workbook() error = %v", err)
	}
	if string(out) != "xlsx" {
		t.Fatalf("expected exporter output passed through")
	}
	if exporter.tables == nil {
		t.Fatalf("expected tables handed to exporter")
	}
}
