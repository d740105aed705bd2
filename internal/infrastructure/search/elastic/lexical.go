package elastic

import (
	"context"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
)

var DefaultLexicalFields = []string{"title^2", "content"}

// LexicalRetriever runs BM25 multi_match queries.
type LexicalRetriever struct {
	client *Client
	fields []string
}

func NewLexicalRetriever(client *Client, fields []string) *LexicalRetriever {
	if len(fields) == 0 {
		fields = DefaultLexicalFields
	}
	return &LexicalRetriever{client: client, fields: fields}
}

func (r *LexicalRetriever) Search(ctx context.Context, query string, size int) (domain.RankList, error) {
	return r.client.search(ctx, "bm25", map[string]any{
		"size":    size,
		"_source": sourceFields,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": r.fields,
			},
		},
	})
}
