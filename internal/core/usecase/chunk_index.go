package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
	"github.com/kirillkom/pdf-rag-engine/internal/core/ports"
)

const (
	DefaultBulkBatchSize     = 500
	DefaultEmbedBatchSize    = 32
	DefaultIngestConcurrency = 4
)

type IngestConfig struct {
	BulkBatchSize  int
	EmbedBatchSize int
	Concurrency    int
}

// ChunkIndexUseCase turns extracted pages into indexed chunks.
type ChunkIndexUseCase struct {
	chunker ports.Chunker
	encoder ports.Encoder
	indexer ports.ChunkIndexer
	cfg     IngestConfig
}

func NewChunkIndexUseCase(
	chunker ports.Chunker,
	encoder ports.Encoder,
	indexer ports.ChunkIndexer,
	cfg IngestConfig,
) *ChunkIndexUseCase {
	if cfg.BulkBatchSize <= 0 {
		cfg.BulkBatchSize = DefaultBulkBatchSize
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = DefaultEmbedBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultIngestConcurrency
	}
	return &ChunkIndexUseCase{
		chunker: chunker,
		encoder: encoder,
		indexer: indexer,
		cfg:     cfg,
	}
}

// IngestDocument chunks every page, embeds the chunks and bulk-indexes them.
// It returns the number of chunks produced. A document without text yields
// zero chunks and no index writes.
func (uc *ChunkIndexUseCase) IngestDocument(ctx context.Context, doc *domain.Document, pages []domain.Page) (int, error) {
	chunks, err := uc.buildChunks(ctx, doc, pages)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	indexed := 0
	for start := 0; start < len(chunks); start += uc.cfg.BulkBatchSize {
		batch := chunks[start:min(start+uc.cfg.BulkBatchSize, len(chunks))]

		vectors, err := uc.embed(ctx, batch)
		if err != nil {
			return indexed, err
		}

		report, err := uc.indexer.IndexChunks(ctx, batch, vectors)
		if err != nil {
			return indexed, domain.WrapError(domain.ErrIndexing, "bulk index chunks", err)
		}
		indexed += report.Indexed
		if report.Failed > 0 {
			return indexed, domain.WrapError(
				domain.ErrIndexing,
				"bulk index chunks",
				fmt.Errorf("%d of %d chunks rejected: %s", report.Failed, report.Attempted, report.FirstError),
			)
		}
	}

	slog.Info("document_indexed", "document_id", doc.ID, "pages", len(pages), "chunks", len(chunks))
	return len(chunks), nil
}

func (uc *ChunkIndexUseCase) buildChunks(ctx context.Context, doc *domain.Document, pages []domain.Page) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "build chunks", errors.New("document is nil"))
	}

	title := doc.Title
	if title == "" {
		title = doc.Filename
	}
	source := doc.Filename
	if source == "" {
		source = doc.ID
	}

	perPage := make([][]domain.Chunk, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.Concurrency)
	for i, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			windows := uc.chunker.Split(page.Text)
			out := make([]domain.Chunk, 0, len(windows))
			for idx, text := range windows {
				out = append(out, domain.Chunk{
					ID:         chunkID(doc.ID, page.Number, idx),
					DocumentID: doc.ID,
					Title:      title,
					SourceID:   source,
					Page:       page.Number,
					Text:       text,
					Link:       doc.SourceLink,
				})
			}
			perPage[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("chunk pages: %w", err)
	}

	total := 0
	for _, c := range perPage {
		total += len(c)
	}
	chunks := make([]domain.Chunk, 0, total)
	for _, c := range perPage {
		chunks = append(chunks, c...)
	}
	return chunks, nil
}

func (uc *ChunkIndexUseCase) embed(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.Concurrency)
	for start := 0; start < len(chunks); start += uc.cfg.EmbedBatchSize {
		end := min(start+uc.cfg.EmbedBatchSize, len(chunks))
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, c := range chunks[start:end] {
				texts = append(texts, c.Text)
			}
			out, err := uc.encoder.Encode(gctx, texts)
			if err != nil {
				return err
			}
			if len(out) != len(texts) {
				return fmt.Errorf("vectors/chunks mismatch: %d/%d", len(out), len(texts))
			}
			copy(vectors[start:end], out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.WrapError(domain.ErrEncoding, "embed chunks", err)
	}
	return vectors, nil
}

// chunkID is stable for a (document, page, window) triple so re-ingesting a
// document overwrites its previous chunks.
func chunkID(documentID string, page, window int) string {
	name := fmt.Sprintf("%s:%d:%d", documentID, page, window)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
