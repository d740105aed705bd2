package elastic

import (
	"context"
	"strings"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
	"github.com/kirillkom/pdf-rag-engine/internal/core/ports"
)

const (
	DefaultDenseField    = "dense_vec"
	DefaultKNNK          = 50
	DefaultNumCandidates = 750
)

type DenseConfig struct {
	Field         string
	K             int
	NumCandidates int
}

// DenseRetriever embeds the query and runs approximate kNN over the dense
// vector field.
type DenseRetriever struct {
	client  *Client
	encoder ports.Encoder
	cfg     DenseConfig
}

func NewDenseRetriever(client *Client, encoder ports.Encoder, cfg DenseConfig) *DenseRetriever {
	if strings.TrimSpace(cfg.Field) == "" {
		cfg.Field = DefaultDenseField
	}
	if cfg.K <= 0 {
		cfg.K = DefaultKNNK
	}
	if cfg.NumCandidates <= 0 {
		cfg.NumCandidates = DefaultNumCandidates
	}
	return &DenseRetriever{client: client, encoder: encoder, cfg: cfg}
}

func (r *DenseRetriever) Search(ctx context.Context, query string, size int) (domain.RankList, error) {
	vector, err := r.encoder.EncodeQuery(ctx, query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrEncoding, "dense retriever", err)
	}

	k := max(r.cfg.K, size)
	return r.client.search(ctx, "dense", map[string]any{
		"size":    size,
		"_source": sourceFields,
		"knn": map[string]any{
			"field":          r.cfg.Field,
			"query_vector":   vector,
			"k":              k,
			"num_candidates": max(r.cfg.NumCandidates, k),
		},
	})
}
