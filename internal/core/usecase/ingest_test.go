package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
)

type batchRepoFake struct {
	created *domain.Batch
	batch   *domain.Batch
	docs    []domain.Document
	err     error
}

func (f *batchRepoFake) CreateBatch(_ context.Context, batch *domain.Batch) error {
	if f.err != nil {
		return f.err
	}
	f.created = batch
	return nil
}

func (f *batchRepoFake) GetBatch(_ context.Context, id string) (*domain.Batch, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.batch != nil {
		return f.batch, nil
	}
	return &domain.Batch{ID: id}, nil
}

func (f *batchRepoFake) ListDocuments(context.Context, string) ([]domain.Document, error) {
	return f.docs, nil
}

type docRepoFake struct {
	created  *domain.Document
	doc      *domain.Document
	statuses []domain.DocumentStatus
	header   *domain.Header
	err      error
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.err != nil {
		return f.err
	}
	f.created = doc
	return nil
}

func (f *docRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.doc != nil {
		return f.doc, nil
	}
	return &domain.Document{ID: id}, nil
}

func (f *docRepoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, _ string) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *docRepoFake) SaveHeader(_ context.Context, _ string, header domain.Header) error {
	f.header = &header
	return nil
}

type storageFake struct {
	keys []string
	err  error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	if _, err := io.ReadAll(data); err != nil {
		return err
	}
	f.keys = append(f.keys, key)
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishDocumentUploaded(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentUploaded(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestIngestUseCaseCreateBatch(t *testing.T) {
	batches := &batchRepoFake{}
	uc := NewIngestUseCase(batches, &docRepoFake{}, &storageFake{}, &queueFake{})

	batch, err := uc.CreateBatch(context.Background())
	if err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}
	if batch.ID == "" {
		t.Fatalf("expected generated batch id")
	}
	if batches.created == nil || batches.created.ID != batch.ID {
		t.Fatalf("expected batch persisted")
	}
}

func TestIngestUseCaseUpload(t *testing.T) {
	batches := &batchRepoFake{}
	docs := &docRepoFake{}
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewIngestUseCase(batches, docs, storage, queue)

	doc, err := uc.Upload(context.Background(), "batch-1", "liquidación marzo.pdf", "application/pdf", "issuer", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.Role != domain.RoleIssuer {
		t.Fatalf("expected issuer role, got %s", doc.Role)
	}
	if doc.BatchID != "batch-1" {
		t.Fatalf("expected batch id carried, got %s", doc.BatchID)
	}
	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected status=uploaded, got %s", doc.Status)
	}
	if len(storage.keys) != 1 || !strings.HasPrefix(storage.keys[0], doc.ID+"_") {
		t.Fatalf("expected storage key prefixed with document id, got %v", storage.keys)
	}
	if strings.Contains(storage.keys[0], " ") {
		t.Fatalf("expected sanitized storage key, got %s", storage.keys[0])
	}
	if docs.created == nil || docs.created.ID != doc.ID {
		t.Fatalf("expected document metadata persisted")
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("expected upload event published, got %v", queue.published)
	}
}

func TestIngestUseCaseUploadUnknownRole(t *testing.T) {
	storage := &storageFake{}
	uc := NewIngestUseCase(&batchRepoFake{}, &docRepoFake{}, storage, &queueFake{})

	_, err := uc.Upload(context.Background(), "batch-1", "doc.pdf", "application/pdf", "auditor", strings.NewReader("x"))
	if err == nil {
		t.Fatalf("expected error for unknown role")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input kind, got %v", err)
	}
	if len(storage.keys) != 0 {
		t.Fatalf("expected nothing stored on rejected upload")
	}
}

func TestIngestUseCaseUploadStorageError(t *testing.T) {
	docs := &docRepoFake{}
	uc := NewIngestUseCase(&batchRepoFake{}, docs, &storageFake{err: errors.New("disk full")}, &queueFake{})

	_, err := uc.Upload(context.Background(), "batch-1", "doc.pdf", "application/pdf", "recipient", strings.NewReader("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if docs.created != nil {
		t.Fatalf("expected no metadata written after storage failure")
	}
}

func TestIngestUseCaseGetDocumentEmptyID(t *testing.T) {
	uc := NewIngestUseCase(&batchRepoFake{}, &docRepoFake{}, &storageFake{}, &queueFake{})
	_, err := uc.GetDocument(context.Background(), "  ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input kind, got %v", err)
	}
}
