package pipeline

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

type TokenKind int

const (
	TokenLabel TokenKind = iota
	TokenNumber
	TokenSeparator
)

// Token is one typed fragment of a settlement line. Number tokens keep both
// the source text and the exact decimal value so nothing is lost between the
// printed document and the arithmetic.
type Token struct {
	Kind   TokenKind
	Text   string
	Number decimal.Decimal
}

// Tokenizer splits raw lines into tokens using the source locale's number
// format. Separators are configured through the rules file because the
// authority prints amounts as 1,234.56 today but regional variants exist.
type Tokenizer struct {
	thousands string
	decimal   string
	numberRe  *regexp.Regexp
}

func NewTokenizer(rules domain.Rules) *Tokenizer {
	thousands := rules.ThousandsSeparator
	if thousands == "" {
		thousands = ","
	}
	dec := rules.DecimalSeparator
	if dec == "" {
		dec = "."
	}
	pattern := `^-?\$?\d{1,3}(` + regexp.QuoteMeta(thousands) + `\d{3})*(` +
		regexp.QuoteMeta(dec) + `\d+)?$|^-?\$?\d+(` + regexp.QuoteMeta(dec) + `\d+)?$`
	return &Tokenizer{
		thousands: thousands,
		decimal:   dec,
		numberRe:  regexp.MustCompile(pattern),
	}
}

// Tokenize splits one line on whitespace and types each field. A line that
// yields zero tokens is blank and dropped by the classifier.
func (t *Tokenizer) Tokenize(line string) []Token {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	out := make([]Token, 0, len(fields))
	for _, f := range fields {
		switch {
		case f == "-" || f == "/" || f == "|":
			out = append(out, Token{Kind: TokenSeparator, Text: f})
		case t.numberRe.MatchString(f):
			n, err := t.parseNumber(f)
			if err != nil {
				out = append(out, Token{Kind: TokenLabel, Text: f})
				continue
			}
			out = append(out, Token{Kind: TokenNumber, Text: f, Number: n})
		default:
			out = append(out, Token{Kind: TokenLabel, Text: f})
		}
	}
	return out
}

func (t *Tokenizer) parseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(s, "$")
	if strings.HasPrefix(s, "-$") {
		s = "-" + s[2:]
	}
	s = strings.ReplaceAll(s, t.thousands, "")
	if t.decimal != "." {
		s = strings.ReplaceAll(s, t.decimal, ".")
	}
	return decimal.NewFromString(s)
}

// Render formats a decimal back into the source locale, thousands separators
// included. Tokenize(Render(d)) yields d exactly; the reconciliation grids
// rely on that round trip.
func (t *Tokenizer) Render(d decimal.Decimal) string {
	s := d.String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	if lead > len(intPart) {
		lead = len(intPart)
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(t.thousands)
		b.WriteString(intPart[i : i+3])
	}
	if fracPart != "" {
		b.WriteString(t.decimal)
		b.WriteString(fracPart)
	}
	return b.String()
}

// LabelText joins the leading label tokens of a line, upper cased, which is
// what the classifier matches section markers against.
func LabelText(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind != TokenLabel {
			continue
		}
		parts = append(parts, tok.Text)
	}
	return strings.ToUpper(strings.Join(parts, " "))
}
