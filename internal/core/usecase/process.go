package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrocontable/liquidaciones/internal/core/domain"
	"github.com/agrocontable/liquidaciones/internal/core/ports"
)

type ProcessUseCase struct {
	docs      ports.DocumentRepository
	records   ports.RecordRepository
	extractor ports.LineExtractor
	processor ports.SettlementProcessor
}

func NewProcessUseCase(
	docs ports.DocumentRepository,
	records ports.RecordRepository,
	extractor ports.LineExtractor,
	processor ports.SettlementProcessor,
) *ProcessUseCase {
	return &ProcessUseCase{
		docs:      docs,
		records:   records,
		extractor: extractor,
		processor: processor,
	}
}

// ProcessByID drives a document through the settlement pipeline and persists
// the outcome. Extraction issues are data, not failures: a document with only
// warnings still ends up ready. Failed means the pipeline could not run at
// all, e.g. an unreadable file or a document with no text lines.
func (uc *ProcessUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	result, err := uc.runPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.persistResults(ctx, documentID, result); err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}

	return nil
}

func (uc *ProcessUseCase) runPipeline(ctx context.Context, documentID string) (domain.ExtractionResult, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("fetch document by id: %w", err)
	}

	lines, err := uc.extractor.ExtractLines(ctx, doc)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("extract lines: %w", err)
	}
	if len(lines) == 0 {
		return domain.ExtractionResult{}, domain.WrapError(domain.ErrInvalidInput, "extract lines", errors.New("document produced no text lines"))
	}

	return uc.processor.Run(doc, lines), nil
}

func (uc *ProcessUseCase) persistResults(ctx context.Context, documentID string, result domain.ExtractionResult) error {
	if err := uc.docs.SaveHeader(ctx, documentID, result.Header); err != nil {
		return fmt.Errorf("save header: %w", err)
	}
	if err := uc.records.ReplaceDocumentResults(ctx, documentID, result.Records, result.Issues); err != nil {
		return fmt.Errorf("save extraction results: %w", err)
	}
	return nil
}

func (uc *ProcessUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.docs.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}
