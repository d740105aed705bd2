package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/pdf-rag-engine/internal/config"
	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
	"github.com/kirillkom/pdf-rag-engine/internal/core/ports"
	"github.com/kirillkom/pdf-rag-engine/internal/core/usecase"
	"github.com/kirillkom/pdf-rag-engine/internal/infrastructure/chunking"
	"github.com/kirillkom/pdf-rag-engine/internal/infrastructure/extractor/pdftext"
	"github.com/kirillkom/pdf-rag-engine/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/pdf-rag-engine/internal/infrastructure/queue/nats"
	"github.com/kirillkom/pdf-rag-engine/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/pdf-rag-engine/internal/infrastructure/resilience"
	"github.com/kirillkom/pdf-rag-engine/internal/infrastructure/search/elastic"
	"github.com/kirillkom/pdf-rag-engine/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	QueryUC   *usecase.QueryUseCase

	closeFn func()
}

// QueryApp holds only the retrieval and generation graph. It needs neither
// Postgres nor NATS.
type QueryApp struct {
	Config  config.Config
	QueryUC *usecase.QueryUseCase

	encoder *ollama.Encoder
	search  *elastic.Client
}

func NewQuery(cfg config.Config) (*QueryApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "validate config", err)
	}

	phrases, err := config.LoadGuardrailFile(cfg.GuardrailFile)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "load guardrail", err)
	}
	denylist := usecase.DefaultDenylist
	if phrases.Denylist != nil {
		denylist = phrases.Denylist
	}
	refusals := usecase.DefaultRefusalPhrases
	if phrases.RefusalPhrases != nil {
		refusals = phrases.RefusalPhrases
	}

	ollamaClient := ollama.New(ollama.Config{
		BaseURL:     cfg.OllamaURL,
		GenModel:    cfg.OllamaGenModel,
		EmbedModel:  cfg.OllamaEmbedModel,
		Temperature: cfg.OllamaTemperature,
		EmbedDims:   cfg.EmbedDims,
		Timeout:     time.Duration(cfg.OllamaTimeoutSeconds) * time.Second,
	}, resilience.NewExecutor(executorConfig(cfg, cfg.LLMRetryAttempts)))
	encoder := ollama.NewEncoder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	search, err := elastic.New(elastic.Config{
		Addresses: cfg.ElasticURLs,
		Username:  cfg.ElasticUsername,
		Password:  cfg.ElasticPassword,
		APIKey:    cfg.ElasticAPIKey,
		Index:     cfg.ElasticIndex,
		Pipeline:  cfg.ElasticPipeline,
	}, resilience.NewExecutor(executorConfig(cfg, cfg.RetrievalRetryAttempts)))
	if err != nil {
		return nil, err
	}
	sparse, err := elastic.NewSparseRetriever(search, cfg.ELSEREndpointID, cfg.ELSERField)
	if err != nil {
		return nil, err
	}
	retrievers := map[domain.RetrievalMode]ports.Retriever{
		domain.ModeBM25:  elastic.NewLexicalRetriever(search, cfg.LexicalFields),
		domain.ModeELSER: sparse,
		domain.ModeDense: elastic.NewDenseRetriever(search, encoder, elastic.DenseConfig{
			Field:         cfg.DenseField,
			K:             cfg.DenseK,
			NumCandidates: cfg.DenseNumCandidates,
		}),
	}

	queryUC := usecase.NewQueryUseCase(
		retrievers,
		generator,
		usecase.NewGuardrail(denylist, refusals),
		usecase.QueryConfig{
			RRFK:           cfg.RAGFusionRRFK,
			GenerationTopK: cfg.RAGGenerationTopK,
			SnippetChars:   cfg.RAGSnippetChars,
			DefaultSize:    cfg.RAGDefaultSize,
			MaxSize:        cfg.RAGMaxSize,
			Timeout:        time.Duration(cfg.QueryTimeoutSeconds) * time.Second,
		},
	)

	return &QueryApp{
		Config:  cfg,
		QueryUC: queryUC,
		encoder: encoder,
		search:  search,
	}, nil
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	queryApp, err := NewQuery(cfg)
	if err != nil {
		return nil, err
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(executorConfig(cfg, cfg.LLMRetryAttempts)),
		HandlerTimeout:     time.Duration(cfg.ProcessTimeoutSeconds) * time.Second,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	chunkIndexUC := usecase.NewChunkIndexUseCase(
		chunking.NewSplitter(cfg.ChunkTokens, cfg.ChunkOverlap),
		queryApp.encoder,
		elastic.NewIndexer(queryApp.search, cfg.DenseField),
		usecase.IngestConfig{
			BulkBatchSize:  cfg.IngestBatchSize,
			EmbedBatchSize: cfg.EmbedBatchSize,
			Concurrency:    cfg.IngestConcurrency,
		},
	)
	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, pdftext.NewExtractor(storage), chunkIndexUC)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		QueryUC:   queryApp.QueryUC,

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

// executorConfig builds a retry and breaker policy. Retrieval and LLM calls
// share breaker settings but not attempt counts.
func executorConfig(cfg config.Config, attempts int) resilience.Config {
	out := resilience.DefaultConfig().WithAttempts(attempts)
	out.BreakerEnabled = cfg.BreakerEnabled
	if cfg.BreakerMinRequests > 0 {
		out.BreakerMinRequests = uint32(cfg.BreakerMinRequests)
	}
	if cfg.BreakerFailureRatio > 0 {
		out.BreakerFailureRatio = cfg.BreakerFailureRatio
	}
	if cfg.BreakerOpenTimeoutSeconds > 0 {
		out.BreakerOpenTimeout = time.Duration(cfg.BreakerOpenTimeoutSeconds) * time.Second
	}
	return out
}
