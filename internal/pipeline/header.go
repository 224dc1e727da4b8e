package pipeline

import (
	"regexp"
	"strconv"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

var (
	codeRe   = regexp.MustCompile(`C[oó]d\.\s*([0-9]{3})`)
	letterRe = regexp.MustCompile(`ORIGINAL\s+([AB])\b`)
	numberRe = regexp.MustCompile(`N[°º]\s*([0-9]{5})-([0-9]{8})`)
	dateRe   = regexp.MustCompile(`Fecha\s+([0-9]{2}/[0-9]{2}/[0-9]{4})`)
	opDateRe = regexp.MustCompile(`Fecha Operaci[oó]n:\s*([0-9]{2}/[0-9]{2}/[0-9]{4})`)
)

// ParseHeader scans the document lines for the identification block the
// authority prints on every settlement: voucher code, letter, point of sale
// and sequence number, issue and operation dates. Absent fields stay zero;
// the pipeline works without them, the reports just carry less context.
func ParseHeader(lines []domain.RawLine) domain.Header {
	var h domain.Header
	for _, line := range lines {
		if h.SettlementCode == 0 {
			if m := codeRe.FindStringSubmatch(line.Text); m != nil {
				if code, err := strconv.Atoi(m[1]); err == nil {
					h.SettlementCode = code
				}
			}
		}
		if h.Letter == "" {
			if m := letterRe.FindStringSubmatch(line.Text); m != nil {
				h.Letter = m[1]
			}
		}
		if h.PointOfSale == "" {
			if m := numberRe.FindStringSubmatch(line.Text); m != nil {
				h.PointOfSale = m[1]
				h.Number = m[2]
			}
		}
		if h.OperationDate == "" {
			if m := opDateRe.FindStringSubmatch(line.Text); m != nil {
				h.OperationDate = m[1]
			}
		}
		if h.IssueDate == "" {
			if m := dateRe.FindStringSubmatch(line.Text); m != nil && opDateRe.FindString(line.Text) == "" {
				h.IssueDate = m[1]
			}
		}
	}
	return h
}
