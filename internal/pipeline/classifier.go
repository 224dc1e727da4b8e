package pipeline

import (
	"fmt"
	"strings"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

type SectionState string

const (
	StateHeader      SectionState = "HEADER"
	StateBodyVentas  SectionState = "BODY_VENTAS"
	StateBodyCompras SectionState = "BODY_COMPRAS"
	StateAdjustments SectionState = "ADJUSTMENTS"
	StateFooter      SectionState = "FOOTER"
)

type markerKind int

const (
	markerNone markerKind = iota
	markerVentas
	markerCompras
	markerAdjustments
	markerFooter
)

// transitions is the full state machine keyed by recognized section markers.
// Missing entries mean the marker does not move the state; FOOTER is terminal.
var transitions = map[SectionState]map[markerKind]SectionState{
	StateHeader: {
		markerVentas:      StateBodyVentas,
		markerCompras:     StateBodyCompras,
		markerAdjustments: StateAdjustments,
		markerFooter:      StateFooter,
	},
	StateBodyVentas: {
		markerCompras:     StateBodyCompras,
		markerAdjustments: StateAdjustments,
		markerFooter:      StateFooter,
	},
	StateBodyCompras: {
		markerVentas:      StateBodyVentas,
		markerAdjustments: StateAdjustments,
		markerFooter:      StateFooter,
	},
	StateAdjustments: {
		markerVentas:  StateBodyVentas,
		markerCompras: StateBodyCompras,
		markerFooter:  StateFooter,
	},
	StateFooter: {},
}

type LineClass int

const (
	ClassNoise LineClass = iota
	ClassBlank
	ClassSectionMarker
	ClassRecord
	ClassAdjustment
)

// ClassifiedLine ties a raw line and its tokens to the classifier's verdict.
type ClassifiedLine struct {
	Line   domain.RawLine
	Tokens []Token
	Class  LineClass
	Type   domain.TransactionType
	Kind   domain.AdjustmentKind
}

// Classifier runs the per-document section state machine. The declared role
// and, when the header carries a recognized settlement code, the movement
// table decide which transaction type each body section yields; the mapping
// is data so new document variants are a rules change, not a code change.
type Classifier struct {
	rules   domain.Rules
	role    domain.Role
	docType domain.TransactionType

	state        SectionState
	lastBodyType domain.TransactionType
	bodyCounts   map[SectionState]int
	visited      []SectionState
}

// NewClassifier builds a classifier for one document. docType is the
// code-resolved transaction type, or empty when the settlement code decides
// nothing and the per-section role mapping applies.
func NewClassifier(rules domain.Rules, role domain.Role, docType domain.TransactionType) *Classifier {
	return &Classifier{
		rules:      rules,
		role:       role,
		docType:    docType,
		state:      StateHeader,
		bodyCounts: make(map[SectionState]int),
	}
}

func (c *Classifier) State() SectionState { return c.state }

// Classify advances the state machine with one tokenized line and tags it.
func (c *Classifier) Classify(line domain.RawLine, tokens []Token) ClassifiedLine {
	cl := ClassifiedLine{Line: line, Tokens: tokens}
	if len(tokens) == 0 {
		cl.Class = ClassBlank
		return cl
	}

	label := LabelText(tokens)

	// "Ajuste físico crédito NOV 2 900.00 ..." carries the adjustment data on
	// the marker line itself: it opens (or continues) the adjustments section
	// and is an adjustment candidate at the same time.
	if kind := c.adjustmentKind(label); kind != domain.AdjustNone &&
		matchesAny(label, c.rules.AdjustmentsMarkers) && hasNumber(tokens) && c.state != StateFooter {
		if next, ok := transitions[c.state][markerAdjustments]; ok {
			c.state = next
			c.visited = append(c.visited, next)
		}
		typ := c.docType
		if typ == "" {
			typ = c.lastBodyType
		}
		if typ == "" {
			cl.Class = ClassNoise
			return cl
		}
		cl.Class = ClassAdjustment
		cl.Type = typ
		cl.Kind = kind
		c.bodyCounts[StateAdjustments]++
		return cl
	}

	if marker := c.detectMarker(label); marker != markerNone {
		if next, ok := transitions[c.state][marker]; ok {
			c.state = next
			c.visited = append(c.visited, next)
			cl.Class = ClassSectionMarker
			return cl
		}
	}

	switch c.state {
	case StateBodyVentas:
		cl.Class = ClassRecord
		cl.Type = c.resolveType(domain.TxVenta)
		c.lastBodyType = cl.Type
		c.bodyCounts[StateBodyVentas]++
	case StateBodyCompras:
		cl.Class = ClassRecord
		cl.Type = c.resolveType(domain.TxCompra)
		c.lastBodyType = cl.Type
		c.bodyCounts[StateBodyCompras]++
	case StateAdjustments:
		kind := c.adjustmentKind(label)
		if kind == domain.AdjustNone {
			cl.Class = ClassNoise
			return cl
		}
		typ := c.docType
		if typ == "" {
			typ = c.lastBodyType
		}
		if typ == "" {
			// Adjustment before any body section: nothing to attribute it to.
			cl.Class = ClassNoise
			return cl
		}
		cl.Class = ClassAdjustment
		cl.Type = typ
		cl.Kind = kind
		c.bodyCounts[StateAdjustments]++
	default:
		cl.Class = ClassNoise
	}
	return cl
}

// Finish reports EMPTY_SECTION for body sections that were entered but never
// produced a candidate line. Informational only.
func (c *Classifier) Finish(documentID string) []domain.Issue {
	var issues []domain.Issue
	seen := make(map[SectionState]bool)
	for _, s := range c.visited {
		if s == StateFooter || seen[s] {
			continue
		}
		seen[s] = true
		if c.bodyCounts[s] == 0 {
			issues = append(issues, domain.Issue{
				DocumentID: documentID,
				LineIndex:  -1,
				Reason:     domain.IssueEmptySection,
				Detail:     fmt.Sprintf("section %s has no records", s),
			})
		}
	}
	return issues
}

func (c *Classifier) resolveType(section domain.TransactionType) domain.TransactionType {
	if c.docType != "" {
		return c.docType
	}
	return domain.SectionType(section, c.role)
}

func (c *Classifier) detectMarker(label string) markerKind {
	switch {
	case matchesAny(label, c.rules.VentasMarkers):
		return markerVentas
	case matchesAny(label, c.rules.ComprasMarkers):
		return markerCompras
	case matchesAny(label, c.rules.AdjustmentsMarkers):
		return markerAdjustments
	case matchesAny(label, c.rules.FooterMarkers):
		return markerFooter
	}
	return markerNone
}

func (c *Classifier) adjustmentKind(label string) domain.AdjustmentKind {
	switch {
	case matchesAny(label, c.rules.PhysicalKeywords):
		return domain.AdjustPhysicalCredit
	case matchesAny(label, c.rules.MonetaryKeywords):
		return domain.AdjustMonetaryCredit
	}
	return domain.AdjustNone
}

func hasNumber(tokens []Token) bool {
	for _, t := range tokens {
		if t.Kind == TokenNumber {
			return true
		}
	}
	return false
}

func matchesAny(label string, markers []string) bool {
	for _, m := range markers {
		if m == "" {
			continue
		}
		if strings.Contains(label, strings.ToUpper(m)) {
			return true
		}
	}
	return false
}
