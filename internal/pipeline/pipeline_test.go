package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

func TestRunnerIssuerSettlement(t *testing.T) {
	r := NewRunner(domain.DefaultRules())
	doc := &domain.Document{ID: "doc-1", Role: domain.RoleIssuer}

	res := r.Run(doc, rawLines(
		"LIQUIDACION ELECTRONICA ORIGINAL A Cód. 180",
		"Nº 00001-00000123 Fecha 05/03/2024",
		"CUENTA DE VENTA",
		"Novillos 10 4,500.00 900,000.00 94,500.00 18,000.00",
		"Ajuste Físico Crédito Novillos 2 900.00 180,000.00",
		"IMPORTE BRUTO: $900,000.00",
	))

	if len(res.Issues) != 0 {
		t.Fatalf("clean document produced issues: %+v", res.Issues)
	}
	if res.Header.SettlementCode != 180 || res.Header.Letter != "A" {
		t.Fatalf("header: %+v", res.Header)
	}
	if res.Header.IssueDate != "05/03/2024" {
		t.Fatalf("issue date: %q", res.Header.IssueDate)
	}
	if res.Header.VoucherType != "LA" {
		t.Fatalf("credit adjustment flips the voucher type, got %q", res.Header.VoucherType)
	}

	if len(res.Records) != 1 {
		t.Fatalf("expected one adjusted record, got %d", len(res.Records))
	}
	rec := res.Records[0]
	if rec.Category != "NOV" || rec.Type != domain.TxVenta {
		t.Fatalf("record: %+v", rec)
	}
	if rec.HeadCount != 8 {
		t.Fatalf("head: expected 8 after the physical credit, got %d", rec.HeadCount)
	}
	if !rec.WeightKg.Equal(decimal.RequireFromString("3600.00")) {
		t.Fatalf("weight: got %s", rec.WeightKg)
	}
	if !rec.NetAmount.Equal(decimal.RequireFromString("720000.00")) {
		t.Fatalf("net: got %s", rec.NetAmount)
	}
	if !rec.VATAmount.Equal(decimal.RequireFromString("94500.00")) {
		t.Fatalf("vat: got %s", rec.VATAmount)
	}
}

func TestRunnerRecipientMovementOverride(t *testing.T) {
	r := NewRunner(domain.DefaultRules())
	doc := &domain.Document{ID: "doc-2", Role: domain.RoleRecipient}

	res := r.Run(doc, rawLines(
		"LIQUIDACION DE COMPRA ORIGINAL A Cód. 186 Nº 00003-00000077 Fecha 10/04/2024",
		"Novillitos 5 1,800.00 400,000.00 42,000.00 6,000.00",
		"IMPORTE BRUTO: $400,000.00",
	))

	if len(res.Issues) != 0 {
		t.Fatalf("unexpected issues: %+v", res.Issues)
	}
	if res.Header.VoucherType != "CD" {
		t.Fatalf("voucher type for code 186: got %q", res.Header.VoucherType)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected one record, got %d", len(res.Records))
	}
	rec := res.Records[0]
	if rec.Type != domain.TxVenta {
		t.Fatalf("code 186 resolves the recipient copy to a sale, got %s", rec.Type)
	}
	if rec.Category != "NT" || rec.HeadCount != 5 {
		t.Fatalf("record: %+v", rec)
	}
}

func TestRunnerAccumulatesLineIssues(t *testing.T) {
	r := NewRunner(domain.DefaultRules())
	doc := &domain.Document{ID: "doc-3", Role: domain.RoleIssuer}

	res := r.Run(doc, rawLines(
		"CUENTA DE VENTA",
		"10 Novillos 4,500.00 900,000.00 94,500.00 18,000.00",
		"Caballos 3 1,200.00 300,000.00 31,500.00 4,500.00",
		"Novillos 10 4,500.00 900,000.00 94,500.00 18,000.00",
	))

	if len(res.Records) != 1 {
		t.Fatalf("good line must survive its broken neighbours, got %d records", len(res.Records))
	}
	reasons := make(map[domain.IssueReason]int)
	for _, iss := range res.Issues {
		reasons[iss.Reason]++
	}
	if reasons[domain.IssueMalformedLine] != 1 || reasons[domain.IssueExtractionError] != 1 {
		t.Fatalf("expected one malformed and one extraction issue, got %+v", res.Issues)
	}
}

func TestRunnerTotalsCrossCheckMismatch(t *testing.T) {
	r := NewRunner(domain.DefaultRules())
	doc := &domain.Document{ID: "doc-4", Role: domain.RoleIssuer}

	res := r.Run(doc, rawLines(
		"VENTAS",
		"Novillos 10 4,500.00 900,000.00 94,500.00 18,000.00",
		"IMPORTE BRUTO: $950,000.00",
	))

	var found bool
	for _, iss := range res.Issues {
		if iss.Reason == domain.IssueTotalsMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a totals mismatch, got %+v", res.Issues)
	}
}

func TestRunnerRejoinsWrappedTotalsAmount(t *testing.T) {
	r := NewRunner(domain.DefaultRules())
	doc := &domain.Document{ID: "doc-5", Role: domain.RoleIssuer}

	res := r.Run(doc, rawLines(
		"VENTAS",
		"Novillos 10 4,500.00 900,000.00 94,500.00 18,000.00",
		"Importe Bruto: $900,000.",
		"00",
	))

	if len(res.Issues) != 0 {
		t.Fatalf("rejoined totals must cross-check clean, got %+v", res.Issues)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected one record, got %d", len(res.Records))
	}
}

func TestRunnerEmptySectionIssue(t *testing.T) {
	r := NewRunner(domain.DefaultRules())
	doc := &domain.Document{ID: "doc-6", Role: domain.RoleIssuer}

	res := r.Run(doc, rawLines("VENTAS", "IMPORTE BRUTO: $0.00"))
	if len(res.Issues) != 1 || res.Issues[0].Reason != domain.IssueEmptySection {
		t.Fatalf("expected an empty-section issue, got %+v", res.Issues)
	}
}
