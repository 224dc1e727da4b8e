package ports

import (
	"context"
	"io"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

type BatchRepository interface {
	CreateBatch(ctx context.Context, batch *domain.Batch) error
	GetBatch(ctx context.Context, id string) (*domain.Batch, error)
	ListDocuments(ctx context.Context, batchID string) ([]domain.Document, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveHeader(ctx context.Context, id string, header domain.Header) error
}

type RecordRepository interface {
	// ReplaceDocumentResults atomically swaps a document's records and issues
	// for the given ones; reprocessing a document never duplicates rows.
	ReplaceDocumentResults(ctx context.Context, documentID string, records []domain.Record, issues []domain.Issue) error
	ListRecordsByBatch(ctx context.Context, batchID string) ([]domain.Record, error)
	ListIssuesByBatch(ctx context.Context, batchID string) ([]domain.Issue, error)
	ListIssuesByDocument(ctx context.Context, documentID string) ([]domain.Issue, error)
}

type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// LineExtractor is the ingestion collaborator boundary: it turns a stored
// document into ordered text lines with position metadata. PDF layout
// reconstruction lives behind it, outside the core.
type LineExtractor interface {
	ExtractLines(ctx context.Context, doc *domain.Document) ([]domain.RawLine, error)
}

// SettlementProcessor is the per-document core pipeline.
type SettlementProcessor interface {
	Run(doc *domain.Document, lines []domain.RawLine) domain.ExtractionResult
}

// ReportExporter renders the assembled tables for download.
type ReportExporter interface {
	Workbook(tables domain.ReportTables) ([]byte, error)
}
