package ports

import (
	"context"
	"io"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
)

// Retriever is one ranked-search strategy over the document index.
type Retriever interface {
	Search(ctx context.Context, query string, size int) (domain.RankList, error)
}

// Encoder builds L2-normalized embeddings. Implementations are safe for
// concurrent use.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	EncodeQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator performs one synchronous generation round-trip.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ChunkIndexer writes a batch of chunks (and their dense vectors) to the index.
type ChunkIndexer interface {
	IndexChunks(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) (domain.BulkReport, error)
}

// Chunker splits page text into overlapping token windows.
type Chunker interface {
	Split(text string) []string
}

// PageExtractor extracts per-page text from a stored document.
type PageExtractor interface {
	ExtractPages(ctx context.Context, doc *domain.Document) ([]domain.Page, error)
}

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveIngestionStats(ctx context.Context, id string, pageCount, chunkCount int) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// RetrievalObserver receives the outcome of every retrieval strategy call.
type RetrievalObserver interface {
	ObserveRetrieval(strategy string, hits int, err error)
}
