package elastic

import (
	"context"
	"errors"
	"strings"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
)

const DefaultSparseField = "ml.tokens"

// SparseRetriever queries the learned sparse expansion written by the ELSER
// ingest pipeline.
type SparseRetriever struct {
	client  *Client
	modelID string
	field   string
}

func NewSparseRetriever(client *Client, modelID, field string) (*SparseRetriever, error) {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return nil, domain.WrapError(domain.ErrConfiguration, "sparse retriever", errors.New("ELSER model id is empty"))
	}
	if strings.TrimSpace(field) == "" {
		field = DefaultSparseField
	}
	return &SparseRetriever{client: client, modelID: modelID, field: field}, nil
}

func (r *SparseRetriever) Search(ctx context.Context, query string, size int) (domain.RankList, error) {
	return r.client.search(ctx, "elser", map[string]any{
		"size":    size,
		"_source": sourceFields,
		"query": map[string]any{
			"text_expansion": map[string]any{
				r.field: map[string]any{
					"model_id":   r.modelID,
					"model_text": query,
				},
			},
		},
	})
}
