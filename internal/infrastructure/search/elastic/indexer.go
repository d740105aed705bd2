package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
)

// Indexer writes chunks with the bulk API. Sparse tokens are produced by the
// configured ingest pipeline. Dense vectors travel in the same request.
type Indexer struct {
	client     *Client
	denseField string
}

func NewIndexer(client *Client, denseField string) *Indexer {
	if denseField == "" {
		denseField = DefaultDenseField
	}
	return &Indexer{client: client, denseField: denseField}
}

type bulkResponse struct {
	Errors bool                          `json:"errors"`
	Items  []map[string]bulkResponseItem `json:"items"`
}

type bulkResponseItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

func (ix *Indexer) IndexChunks(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) (domain.BulkReport, error) {
	report := domain.BulkReport{Attempted: len(chunks)}
	if len(chunks) == 0 {
		return report, nil
	}
	if vectors != nil && len(vectors) != len(chunks) {
		return report, fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors))
	}

	payload, err := ix.encodeBulk(chunks, vectors)
	if err != nil {
		return report, err
	}

	var parsed bulkResponse
	err = ix.client.run(ctx, "bulk", func(callCtx context.Context) error {
		opts := []func(*esapi.BulkRequest){
			ix.client.es.Bulk.WithContext(callCtx),
			ix.client.es.Bulk.WithIndex(ix.client.index),
			ix.client.es.Bulk.WithRefresh("true"),
		}
		if ix.client.pipeline != "" {
			opts = append(opts, ix.client.es.Bulk.WithPipeline(ix.client.pipeline))
		}

		res, err := ix.client.es.Bulk(bytes.NewReader(payload), opts...)
		if err != nil {
			return fmt.Errorf("elasticsearch bulk request: %w", err)
		}
		defer res.Body.Close()

		if res.IsError() {
			return statusError("bulk", res.StatusCode, res.Body)
		}
		parsed = bulkResponse{}
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			return fmt.Errorf("decode bulk response: %w", err)
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	for _, item := range parsed.Items {
		for _, result := range item {
			if result.Status >= 200 && result.Status < 300 && result.Error == nil {
				report.Indexed++
				continue
			}
			report.Failed++
			if report.FirstError == "" && result.Error != nil {
				report.FirstError = fmt.Sprintf("%s: %s: %s", result.ID, result.Error.Type, result.Error.Reason)
			}
		}
	}
	if missing := report.Attempted - report.Indexed - report.Failed; missing > 0 {
		report.Failed += missing
		if report.FirstError == "" {
			report.FirstError = fmt.Sprintf("%d items missing from bulk response", missing)
		}
	}
	return report, nil
}

// encodeBulk renders the NDJSON body: one action line and one document line
// per chunk. The chunk id is the document _id so re-ingestion overwrites.
func (ix *Indexer) encodeBulk(chunks []domain.Chunk, vectors [][]float32) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, chunk := range chunks {
		action := map[string]any{"index": map[string]any{"_id": chunk.ID}}
		if err := enc.Encode(action); err != nil {
			return nil, fmt.Errorf("encode bulk action: %w", err)
		}

		doc := map[string]any{
			"document_id": chunk.DocumentID,
			"title":       chunk.Title,
			"source":      chunk.SourceID,
			"page":        chunk.Page,
			"content":     chunk.Text,
		}
		if chunk.Link != "" {
			doc["drive_url"] = chunk.Link
		}
		if vectors != nil {
			doc[ix.denseField] = vectors[i]
		}
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode bulk document: %w", err)
		}
	}
	return buf.Bytes(), nil
}
