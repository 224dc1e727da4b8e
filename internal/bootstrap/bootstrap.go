package bootstrap

import (
	"context"
	"fmt"

	"github.com/agrocontable/liquidaciones/internal/config"
	"github.com/agrocontable/liquidaciones/internal/core/ports"
	"github.com/agrocontable/liquidaciones/internal/core/usecase"
	"github.com/agrocontable/liquidaciones/internal/infrastructure/export/xlsx"
	"github.com/agrocontable/liquidaciones/internal/infrastructure/extractor/pdftext"
	"github.com/agrocontable/liquidaciones/internal/infrastructure/queue/nats"
	"github.com/agrocontable/liquidaciones/internal/infrastructure/repository/postgres"
	"github.com/agrocontable/liquidaciones/internal/infrastructure/resilience"
	"github.com/agrocontable/liquidaciones/internal/infrastructure/storage/localfs"
	"github.com/agrocontable/liquidaciones/internal/pipeline"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Docs  ports.DocumentRepository

	IngestUC  *usecase.IngestUseCase
	ProcessUC *usecase.ProcessUseCase
	ReportUC  *usecase.ReportUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	docs := postgres.NewDocumentRepository(db)
	if err := docs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	batches := postgres.NewBatchRepository(db)
	records := postgres.NewRecordRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	extractor := pdftext.NewExtractor(storage)
	runner := pipeline.NewRunner(rules)
	exporter := xlsx.NewExporter()

	ingestUC := usecase.NewIngestUseCase(batches, docs, storage, queue)
	processUC := usecase.NewProcessUseCase(docs, records, extractor, runner)
	reportUC := usecase.NewReportUseCase(batches, records, exporter, cfg.RequireNonEmptyTables)

	return &App{
		Config: cfg,
		Queue:  queue,
		Docs:   docs,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		ReportUC:  reportUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
