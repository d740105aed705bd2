package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
	"github.com/kirillkom/pdf-rag-engine/internal/infrastructure/resilience"
)

// sourceFields is the projection every retrieval strategy asks for.
var sourceFields = []string{"title", "source", "page", "content", "drive_url"}

type Config struct {
	Addresses []string
	Username  string
	Password  string
	APIKey    string
	Index     string
	// Pipeline is the ingest pipeline applied on bulk writes. It computes
	// the sparse expansion tokens.
	Pipeline string
}

type Client struct {
	es       *elasticsearch.Client
	index    string
	pipeline string
	exec     *resilience.Executor
}

// New builds a client. The driver's own retries are disabled so that exec
// decides retry and breaker policy; exec may be nil.
func New(cfg Config, exec *resilience.Executor) (*Client, error) {
	if strings.TrimSpace(cfg.Index) == "" {
		return nil, domain.WrapError(domain.ErrConfiguration, "elastic client", errors.New("index name is empty"))
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		APIKey:       cfg.APIKey,
		DisableRetry: true,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "elastic client", err)
	}
	return &Client{
		es:       es,
		index:    cfg.Index,
		pipeline: strings.TrimSpace(cfg.Pipeline),
		exec:     exec,
	}, nil
}

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "elasticsearch status error"
	}
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("elasticsearch %s status: %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("elasticsearch %s status: %d: %s", e.Operation, e.StatusCode, body)
}

func (e *HTTPStatusError) HTTPStatus() int { return e.StatusCode }

func (c *Client) run(ctx context.Context, operation string, fn func(context.Context) error) error {
	return c.exec.Execute(ctx, "elastic."+operation, fn, resilience.ClassifyTransportError)
}

// search runs one _search request and decodes the hits. Any failure is a
// retrieval error.
func (c *Client) search(ctx context.Context, operation string, body map[string]any) (domain.RankList, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrieval, "elastic "+operation, fmt.Errorf("marshal query: %w", err))
	}

	var hits domain.RankList
	err = c.run(ctx, operation, func(callCtx context.Context) error {
		res, err := c.es.Search(
			c.es.Search.WithContext(callCtx),
			c.es.Search.WithIndex(c.index),
			c.es.Search.WithBody(bytes.NewReader(payload)),
		)
		if err != nil {
			return fmt.Errorf("elasticsearch %s request: %w", operation, err)
		}
		defer res.Body.Close()

		if res.IsError() {
			return statusError(operation, res.StatusCode, res.Body)
		}

		var parsed searchResponse
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
		hits, err = parsed.rankList()
		return err
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrieval, "elastic "+operation, err)
	}
	return hits, nil
}

func statusError(operation string, statusCode int, body io.Reader) error {
	raw, _ := io.ReadAll(io.LimitReader(body, 2048))
	return &HTTPStatusError{Operation: operation, StatusCode: statusCode, Body: string(raw)}
}
