package pipeline

import (
	"regexp"
	"strings"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

// Text extraction from layouted PDFs occasionally wraps an amount onto the
// next line ("1,876,895." / "78"). These joins repair the two shapes the
// source documents actually produce before tokenization sees them.
var (
	splitAmountTail = regexp.MustCompile(`(\d[\d,]*\.)$`)
	splitAmountHead = regexp.MustCompile(`^(\d{1,3})\b`)
	splitDigitTail  = regexp.MustCompile(`(\d[\d,]*\.\d)$`)
	splitDigitHead  = regexp.MustCompile(`^(\d)\b`)
	spaceRun        = regexp.MustCompile(`[ \t]+`)
)

// NormalizeLines rejoins amounts broken across line wraps and collapses runs
// of whitespace. Merged continuations keep the first line's position.
func NormalizeLines(src []domain.RawLine) []domain.RawLine {
	lines := make([]domain.RawLine, len(src))
	copy(lines, src)

	out := make([]domain.RawLine, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		cur := lines[i]
		text := strings.TrimSpace(spaceRun.ReplaceAllString(cur.Text, " "))

		if i+1 < len(lines) {
			next := strings.TrimSpace(spaceRun.ReplaceAllString(lines[i+1].Text, " "))
			if m := splitAmountTail.FindString(text); m != "" {
				if h := splitAmountHead.FindString(next); h != "" {
					text += h
					rest := strings.TrimSpace(strings.TrimPrefix(next, h))
					lines[i+1].Text = rest
					if rest == "" {
						i++
					}
				}
			} else if m := splitDigitTail.FindString(text); m != "" {
				if h := splitDigitHead.FindString(next); h != "" {
					text += h
					rest := strings.TrimSpace(strings.TrimPrefix(next, h))
					lines[i+1].Text = rest
					if rest == "" {
						i++
					}
				}
			}
		}

		out = append(out, domain.RawLine{Page: cur.Page, Index: cur.Index, Text: text})
	}
	return out
}
