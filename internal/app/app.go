package app

import (
	"context"
	"log/slog"
	"time"

	"NewsCapsule/internal/aggregate"
	"NewsCapsule/internal/classify"
	"NewsCapsule/internal/compose"
	"NewsCapsule/internal/config"
	"NewsCapsule/internal/infrastructure/chroma"
	"NewsCapsule/internal/infrastructure/embedding"
	"NewsCapsule/internal/infrastructure/export"
	"NewsCapsule/internal/infrastructure/llm"
	"NewsCapsule/internal/infrastructure/newsapi"
	"NewsCapsule/internal/infrastructure/rss"
	"NewsCapsule/internal/infrastructure/scheduler"
	"NewsCapsule/internal/infrastructure/sources"
	"NewsCapsule/internal/infrastructure/storage"
	"NewsCapsule/internal/infrastructure/telegram"
	"NewsCapsule/internal/logging"
	"NewsCapsule/internal/ports"
	"NewsCapsule/internal/report"
	"NewsCapsule/internal/retrieve"
	"NewsCapsule/internal/scanner"
	"NewsCapsule/internal/textprep"
	"NewsCapsule/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	store    *storage.PostgresStore
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := scanner.NewRegistry()
	registry.Register(newsapi.NewScanner(nil, cfg.News.APIKey, cfg.News.ExtraURLs, baseLogger.With("component", "scanner.newsapi")))
	registry.Register(rss.NewScanner(baseLogger.With("component", "scanner.rss")))

	source := sources.NewStrategySource(registry, cfg.Sources, cfg.News, baseLogger.With("component", "source"))

	embedder := embedding.NewClient(cfg.Embedding)
	classifier := classify.NewClassifier(embedder, cfg.Categories.Labels, cfg.Categories.PromptTemplate)

	pyq := chroma.NewCollection(cfg.VectorStore, cfg.VectorStore.PYQCollection)
	syllabus := chroma.NewCollection(cfg.VectorStore, cfg.VectorStore.SyllabusCollection)
	retriever := retrieve.NewRetriever(pyq, syllabus, cfg.VectorStore.TopK, baseLogger.With("component", "retriever"))

	var generator ports.Generator
	if cfg.LLM.Endpoint != "" {
		generator = llm.NewClient(cfg.LLM)
	}
	composer := compose.NewComposer(generator, compose.Options{
		MaxExcerptChars: cfg.Pipeline.ExcerptChars,
	}, baseLogger.With("component", "composer"))

	var store *storage.PostgresStore
	var reportStore ports.ReportStore
	if cfg.Database.DSN != "" {
		opened, err := storage.Open(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		store = opened
		reportStore = opened
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:      source,
		Embedder:    embedder,
		Preparer:    textprep.NewPreparer(cfg.Pipeline.MaxCharsPerChunk, cfg.Pipeline.ChunkOverlap, cfg.Pipeline.MinTextLength),
		Aggregator:  aggregate.NewAggregator(baseLogger.With("component", "aggregator")),
		Classifier:  classifier,
		Retriever:   retriever,
		Composer:    composer,
		Reporter:    report.NewBuilder(cfg.Categories.Labels),
		Store:       reportStore,
		Exporter:    export.NewFileExporter(cfg.Export.Dir),
		Notifier:    notifier,
		Workers:     cfg.Pipeline.Workers,
		CapsuleType: cfg.Pipeline.CapsuleType,
		Logger:      baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline, store: store}, nil
}

// Run executes the pipeline once, or on the configured interval when
// scheduling is enabled. In scheduled mode it blocks until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	now := time.Now().In(a.cfg.Scheduler.Location())

	if !a.cfg.Scheduler.Enabled {
		return a.pipeline.ProcessDay(ctx, now)
	}

	driver := scheduler.NewTickerScheduler(a.cfg.Scheduler.IntervalDuration())
	runner := usecase.NewScheduler(driver, a.pipeline)
	if err := runner.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return runner.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
