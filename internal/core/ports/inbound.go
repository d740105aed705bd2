package ports

import (
	"context"
	"io"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
)

// QueryService is the inbound contract for grounded question answering.
type QueryService interface {
	Query(ctx context.Context, req domain.QueryRequest) (*domain.AnswerResult, error)
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType, sourceLink string, body io.Reader) (*domain.Document, error)
}

// PageIngestor chunks, embeds and indexes already extracted pages and
// reports how many chunks were produced.
type PageIngestor interface {
	IngestDocument(ctx context.Context, doc *domain.Document, pages []domain.Page) (int, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}
