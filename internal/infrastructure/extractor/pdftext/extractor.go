package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
	"github.com/agrocontable/liquidaciones/internal/core/ports"
)

// Extractor turns stored settlement files into positioned text lines. PDF
// content is read row by row so the tabular body keeps its line structure;
// plain text files are split on newlines. Anything else is rejected.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) ExtractLines(ctx context.Context, doc *domain.Document) ([]domain.RawLine, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	if isPDF(doc, raw) {
		return pdfLines(raw)
	}
	return textLines(doc, raw)
}

func isPDF(doc *domain.Document, raw []byte) bool {
	if strings.EqualFold(doc.MimeType, "application/pdf") {
		return true
	}
	if strings.HasSuffix(strings.ToLower(doc.Filename), ".pdf") {
		return true
	}
	return bytes.HasPrefix(raw, []byte("%PDF"))
}

func pdfLines(raw []byte) ([]domain.RawLine, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	var lines []domain.RawLine
	index := 0
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("extract page %d text: %w", pageNum, err)
		}
		for _, row := range rows {
			text := joinRow(row)
			if strings.TrimSpace(text) == "" {
				continue
			}
			lines = append(lines, domain.RawLine{
				Page:  pageNum,
				Index: index,
				Text:  text,
			})
			index++
		}
	}
	return lines, nil
}

// joinRow glues horizontally sorted fragments, inserting a space wherever the
// gap to the previous fragment suggests a column boundary.
func joinRow(row *pdf.Row) string {
	var sb strings.Builder
	var prevEnd float64
	for i, text := range row.Content {
		if i > 0 && text.X-prevEnd > 1.0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text.S)
		prevEnd = text.X + text.W
	}
	return sb.String()
}

func textLines(doc *domain.Document, raw []byte) ([]domain.RawLine, error) {
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("unsupported binary format: %s", doc.Filename)
	}

	var lines []domain.RawLine
	index := 0
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, domain.RawLine{
			Page:  1,
			Index: index,
			Text:  line,
		})
		index++
	}
	return lines, nil
}
