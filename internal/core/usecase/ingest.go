package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
	"github.com/agrocontable/liquidaciones/internal/core/ports"
)

type IngestUseCase struct {
	batches ports.BatchRepository
	docs    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestUseCase(
	batches ports.BatchRepository,
	docs ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestUseCase {
	return &IngestUseCase{
		batches: batches,
		docs:    docs,
		storage: storage,
		queue:   queue,
	}
}

func (uc *IngestUseCase) CreateBatch(ctx context.Context) (*domain.Batch, error) {
	batch := &domain.Batch{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.batches.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	return batch, nil
}

// Upload stores a settlement document under a batch and enqueues it for
// processing. The role tells the pipeline which side of the settlement the
// uploader is on; an unknown role is rejected before anything is stored.
func (uc *IngestUseCase) Upload(
	ctx context.Context,
	batchID, filename, mimeType, role string,
	body io.Reader,
) (*domain.Document, error) {
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse role", err)
	}

	if _, err := uc.batches.GetBatch(ctx, batchID); err != nil {
		return nil, fmt.Errorf("fetch batch: %w", err)
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:          id,
		BatchID:     batchID,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Role:        parsedRole,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentUploaded(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish upload event: %w", err)
	}

	return doc, nil
}

func (uc *IngestUseCase) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get document", errors.New("empty document id"))
	}
	doc, err := uc.docs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
