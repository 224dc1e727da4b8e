package xlsx

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

func TestExporterWorkbookSheets(t *testing.T) {
	exporter := NewExporter()

	out, err := exporter.Workbook(domain.ReportTables{
		Ventas: []domain.GridRow{{
			DocumentID:  "doc-1",
			VoucherType: "CV",
			IssueDate:   "05/03/2024",
			Category:    "NOV",
			HeadCount:   10,
			WeightKg:    decimal.RequireFromString("4500"),
			NetAmount:   decimal.RequireFromString("900000"),
			VATAmount:   decimal.RequireFromString("94500"),
			Expense:     decimal.RequireFromString("18000"),
		}},
		ControlHacienda: []domain.AggregateRow{{
			Role:      domain.RoleIssuer,
			Type:      domain.TxVenta,
			Category:  "NOV",
			Quantity:  10,
			WeightKg:  decimal.RequireFromString("4500"),
			GrossBase: decimal.RequireFromString("900000"),
		}},
		Issues: []domain.Issue{{
			DocumentID: "doc-1",
			LineIndex:  4,
			Reason:     domain.IssueMalformedLine,
			Detail:     "line starts with a number",
		}},
	})
	if err != nil {
		t.Fatalf("Workbook() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Ventas", "Compras", "Gastos", "Libro IVA Ventas", "Control Hacienda", "Observaciones"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Fatalf("missing sheet %s (idx=%d err=%v)", sheet, idx, err)
		}
	}
	if idx, _ := f.GetSheetIndex("Sheet1"); idx >= 0 {
		t.Fatalf("default sheet should be removed")
	}

	category, err := f.GetCellValue("Ventas", "D2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if category != "NOV" {
		t.Fatalf("expected category in D2, got %q", category)
	}

	qty, err := f.GetCellValue("Control Hacienda", "D2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if qty != "10" {
		t.Fatalf("expected quantity 10, got %q", qty)
	}
}

func TestExporterEmptyTables(t *testing.T) {
	out, err := NewExporter().Workbook(domain.ReportTables{})
	if err != nil {
		t.Fatalf("Workbook() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Ventas")
	if err != nil {
		t.Fatalf("read ventas rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header row only, got %d rows", len(rows))
	}
}
