package pipeline

import (
	"testing"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

func classify(t *testing.T, c *Classifier, rules domain.Rules, text string) ClassifiedLine {
	t.Helper()
	tok := NewTokenizer(rules)
	line := domain.RawLine{Text: text}
	return c.Classify(line, tok.Tokenize(text))
}

func TestClassifierIssuerSections(t *testing.T) {
	rules := domain.DefaultRules()
	c := NewClassifier(rules, domain.RoleIssuer, "")

	if got := classify(t, c, rules, "Liquidacion electronica").Class; got != ClassNoise {
		t.Fatalf("preamble should be noise, got %v", got)
	}
	if got := classify(t, c, rules, "CUENTA DE VENTA").Class; got != ClassSectionMarker {
		t.Fatalf("expected section marker, got %v", got)
	}
	if c.State() != StateBodyVentas {
		t.Fatalf("expected BODY_VENTAS, got %s", c.State())
	}

	rec := classify(t, c, rules, "Novillos 10 4,500.00 900,000.00 94,500.00 18,000.00")
	if rec.Class != ClassRecord || rec.Type != domain.TxVenta {
		t.Fatalf("expected ventas record for issuer, got class=%v type=%s", rec.Class, rec.Type)
	}

	classify(t, c, rules, "COMPRAS")
	rec = classify(t, c, rules, "Vacas 4 3,800.00 600,000.00 63,000.00 9,000.00")
	if rec.Type != domain.TxCompra {
		t.Fatalf("expected compras record for issuer, got %s", rec.Type)
	}
}

func TestClassifierRecipientFlipsSectionType(t *testing.T) {
	rules := domain.DefaultRules()
	c := NewClassifier(rules, domain.RoleRecipient, "")

	classify(t, c, rules, "VENTAS")
	rec := classify(t, c, rules, "Toros 2 5,000.00 450,000.00 47,250.00 6,000.00")
	if rec.Type != domain.TxCompra {
		t.Fatalf("recipient copy of a ventas section is a purchase, got %s", rec.Type)
	}
}

func TestClassifierDocTypeOverridesSection(t *testing.T) {
	rules := domain.DefaultRules()
	c := NewClassifier(rules, domain.RoleRecipient, domain.TxVenta)

	classify(t, c, rules, "COMPRAS")
	rec := classify(t, c, rules, "Terneros 6 2,100.00 300,000.00 31,500.00 4,500.00")
	if rec.Type != domain.TxVenta {
		t.Fatalf("movement-resolved type must win over the section, got %s", rec.Type)
	}
}

func TestClassifierFooterIsTerminal(t *testing.T) {
	rules := domain.DefaultRules()
	c := NewClassifier(rules, domain.RoleIssuer, "")

	classify(t, c, rules, "VENTAS")
	classify(t, c, rules, "Novillos 10 4,500.00 900,000.00 94,500.00 18,000.00")
	if got := classify(t, c, rules, "IMPORTE BRUTO: 900,000.00").Class; got != ClassSectionMarker {
		t.Fatalf("expected footer marker, got %v", got)
	}
	if c.State() != StateFooter {
		t.Fatalf("expected FOOTER, got %s", c.State())
	}

	if got := classify(t, c, rules, "COMPRAS").Class; got != ClassNoise {
		t.Fatalf("markers after the footer are noise, got %v", got)
	}
	if got := classify(t, c, rules, "Vacas 4 3,800.00 600,000.00 63,000.00 9,000.00").Class; got != ClassNoise {
		t.Fatalf("lines after the footer are noise, got %v", got)
	}
}

func TestClassifierInlineAdjustment(t *testing.T) {
	rules := domain.DefaultRules()
	c := NewClassifier(rules, domain.RoleIssuer, "")

	classify(t, c, rules, "VENTAS")
	classify(t, c, rules, "Novillos 10 4,500.00 900,000.00 94,500.00 18,000.00")

	adj := classify(t, c, rules, "Ajuste Fisico Credito Novillos 2 900.00 180,000.00")
	if adj.Class != ClassAdjustment {
		t.Fatalf("expected inline adjustment, got %v", adj.Class)
	}
	if adj.Kind != domain.AdjustPhysicalCredit {
		t.Fatalf("expected physical credit, got %s", adj.Kind)
	}
	if adj.Type != domain.TxVenta {
		t.Fatalf("adjustment inherits the last body type, got %s", adj.Type)
	}
	if c.State() != StateAdjustments {
		t.Fatalf("inline adjustment opens the adjustments section, got %s", c.State())
	}
}

func TestClassifierAdjustmentBeforeBodyIsNoise(t *testing.T) {
	rules := domain.DefaultRules()
	c := NewClassifier(rules, domain.RoleIssuer, "")

	got := classify(t, c, rules, "Ajuste Monetario Credito 1,000.00")
	if got.Class != ClassNoise {
		t.Fatalf("adjustment with no body section to attribute to must be noise, got %v", got.Class)
	}
}

func TestClassifierMonetaryAdjustmentInSection(t *testing.T) {
	rules := domain.DefaultRules()
	c := NewClassifier(rules, domain.RoleIssuer, "")

	classify(t, c, rules, "COMPRAS")
	classify(t, c, rules, "Vacas 4 3,800.00 600,000.00 63,000.00 9,000.00")
	classify(t, c, rules, "AJUSTES")

	adj := classify(t, c, rules, "Monetario Credito Vacas 12,000.00")
	if adj.Class != ClassAdjustment || adj.Kind != domain.AdjustMonetaryCredit {
		t.Fatalf("expected monetary adjustment, got class=%v kind=%s", adj.Class, adj.Kind)
	}
	if adj.Type != domain.TxCompra {
		t.Fatalf("expected compras type, got %s", adj.Type)
	}
}

func TestClassifierFinishReportsEmptySections(t *testing.T) {
	rules := domain.DefaultRules()
	c := NewClassifier(rules, domain.RoleIssuer, "")

	classify(t, c, rules, "VENTAS")
	classify(t, c, rules, "COMPRAS")
	classify(t, c, rules, "Vacas 4 3,800.00 600,000.00 63,000.00 9,000.00")
	classify(t, c, rules, "IMPORTE BRUTO: 600,000.00")

	issues := c.Finish("doc-1")
	if len(issues) != 1 {
		t.Fatalf("expected one empty-section issue, got %d", len(issues))
	}
	if issues[0].Reason != domain.IssueEmptySection {
		t.Fatalf("expected %s, got %s", domain.IssueEmptySection, issues[0].Reason)
	}
	if issues[0].LineIndex != -1 {
		t.Fatalf("empty-section issues carry no line, got %d", issues[0].LineIndex)
	}
	if issues[0].DocumentID != "doc-1" {
		t.Fatalf("unexpected document id %q", issues[0].DocumentID)
	}
}

func TestClassifierBlankLine(t *testing.T) {
	rules := domain.DefaultRules()
	c := NewClassifier(rules, domain.RoleIssuer, "")

	if got := classify(t, c, rules, "   ").Class; got != ClassBlank {
		t.Fatalf("expected blank, got %v", got)
	}
}
