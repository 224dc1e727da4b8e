package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

const (
	sheetVentas    = "Ventas"
	sheetCompras   = "Compras"
	sheetGastos    = "Gastos"
	sheetVATLedger = "Libro IVA Ventas"
	sheetControl   = "Control Hacienda"
	sheetIssues    = "Observaciones"
)

// Exporter renders the batch report tables as an xlsx workbook, one sheet per
// table. Amounts are written as numbers so spreadsheet formulas keep working.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Workbook(tables domain.ReportTables) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeGrid(f, sheetVentas, tables.Ventas); err != nil {
		return nil, err
	}
	if err := writeGrid(f, sheetCompras, tables.Compras); err != nil {
		return nil, err
	}
	if err := writeExpenses(f, tables.Expenses); err != nil {
		return nil, err
	}
	if err := writeVATLedger(f, tables.VATLedger); err != nil {
		return nil, err
	}
	if err := writeControl(f, tables.ControlHacienda); err != nil {
		return nil, err
	}
	if err := writeIssues(f, tables.Issues); err != nil {
		return nil, err
	}

	// Drop the default sheet so the workbook opens on Ventas.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeGrid(f *excelize.File, sheet string, rows []domain.GridRow) error {
	header := []any{"Documento", "Comprobante", "Fecha", "Categoría", "Cabezas", "Kilos", "Neto", "IVA", "Gastos"}
	if err := newSheet(f, sheet, header); err != nil {
		return err
	}
	for i, row := range rows {
		values := []any{
			row.DocumentID,
			row.VoucherType,
			row.IssueDate,
			row.Category,
			row.HeadCount,
			row.WeightKg.InexactFloat64(),
			row.NetAmount.InexactFloat64(),
			row.VATAmount.InexactFloat64(),
			row.Expense.InexactFloat64(),
		}
		if err := setRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeExpenses(f *excelize.File, rows []domain.ExpenseRow) error {
	if err := newSheet(f, sheetGastos, []any{"Operación", "Categoría", "Gastos"}); err != nil {
		return err
	}
	for i, row := range rows {
		values := []any{string(row.Type), row.Category, row.Expense.InexactFloat64()}
		if err := setRow(f, sheetGastos, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeVATLedger(f *excelize.File, rows []domain.VATLedgerRow) error {
	header := []any{"Documento", "Categoría", "Neto 10,5%", "IVA 10,5%", "Neto 21%", "IVA 21%", "Exento"}
	if err := newSheet(f, sheetVATLedger, header); err != nil {
		return err
	}
	for i, row := range rows {
		values := []any{
			row.DocumentID,
			row.Category,
			row.NetReduced.InexactFloat64(),
			row.VATReduced.InexactFloat64(),
			row.NetGeneral.InexactFloat64(),
			row.VATGeneral.InexactFloat64(),
			row.Exempt.InexactFloat64(),
		}
		if err := setRow(f, sheetVATLedger, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeControl(f *excelize.File, rows []domain.AggregateRow) error {
	header := []any{"Rol", "Operación", "Categoría", "Cantidad", "Kilos", "Importe Bruto"}
	if err := newSheet(f, sheetControl, header); err != nil {
		return err
	}
	for i, row := range rows {
		values := []any{
			string(row.Role),
			string(row.Type),
			row.Category,
			row.Quantity,
			row.WeightKg.InexactFloat64(),
			row.GrossBase.InexactFloat64(),
		}
		if err := setRow(f, sheetControl, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeIssues(f *excelize.File, issues []domain.Issue) error {
	if err := newSheet(f, sheetIssues, []any{"Documento", "Línea", "Motivo", "Detalle"}); err != nil {
		return err
	}
	for i, issue := range issues {
		values := []any{issue.DocumentID, issue.LineIndex, string(issue.Reason), issue.Detail}
		if err := setRow(f, sheetIssues, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func newSheet(f *excelize.File, sheet string, header []any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	return setRow(f, sheet, 1, header)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
