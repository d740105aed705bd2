package ollama

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
	"github.com/kirillkom/pdf-rag-engine/internal/infrastructure/resilience"
)

const DefaultTemperature = 0.2

type Config struct {
	BaseURL     string
	GenModel    string
	EmbedModel  string
	Temperature float64
	// EmbedDims is the expected vector length. Zero disables the check.
	EmbedDims int
	Timeout   time.Duration
}

type Client struct {
	baseURL     string
	genModel    string
	embedModel  string
	temperature float64
	embedDims   int
	httpClient  *http.Client
	exec        *resilience.Executor
}

// New builds a client. exec may be nil, in which case calls are made once
// without a circuit breaker.
func New(cfg Config, exec *resilience.Executor) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	temperature := cfg.Temperature
	if temperature < 0 {
		temperature = DefaultTemperature
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		genModel:    cfg.GenModel,
		embedModel:  cfg.EmbedModel,
		temperature: temperature,
		embedDims:   cfg.EmbedDims,
		httpClient:  &http.Client{Timeout: timeout},
		exec:        exec,
	}
}

// Encoder produces L2-normalized embeddings. It holds no per-call state and
// is shared by ingestion and dense retrieval.
type Encoder struct {
	client *Client
}

func NewEncoder(client *Client) *Encoder {
	return &Encoder{client: client}
}

func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.call(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, domain.WrapError(domain.ErrEncoding, "ollama embed", err)
	}
	if len(response.Embeddings) != len(texts) {
		return nil, domain.WrapError(
			domain.ErrEncoding,
			"ollama embed",
			fmt.Errorf("embeddings/texts mismatch: %d/%d", len(response.Embeddings), len(texts)),
		)
	}

	for i, vec := range response.Embeddings {
		if e.client.embedDims > 0 && len(vec) != e.client.embedDims {
			return nil, domain.WrapError(
				domain.ErrEncoding,
				"ollama embed",
				fmt.Errorf("vector %d has %d dims, expected %d", i, len(vec), e.client.embedDims),
			)
		}
		if !normalize(vec) {
			return nil, domain.WrapError(domain.ErrEncoding, "ollama embed", fmt.Errorf("vector %d has zero norm", i))
		}
	}
	return response.Embeddings, nil
}

func (e *Encoder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Encode(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, domain.WrapError(domain.ErrEncoding, "ollama embed query", errors.New("empty embedding result"))
	}
	return vectors[0], nil
}

// normalize scales vec to unit length in place.
func normalize(vec []float32) bool {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return false
	}
	inv := 1 / math.Sqrt(sum)
	for i, v := range vec {
		vec[i] = float32(float64(v) * inv)
	}
	return true
}

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := map[string]any{
		"model":  g.client.genModel,
		"system": systemPrompt,
		"prompt": userPrompt,
		"stream": false,
		"options": map[string]any{
			"temperature": g.client.temperature,
		},
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := g.client.call(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", domain.WrapError(domain.ErrGeneration, "ollama generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}

func (c *Client) call(ctx context.Context, path string, payload any, out any, operation string) error {
	err := c.exec.Execute(ctx, "ollama."+operation, func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, payload, out, operation)
	}, resilience.ClassifyTransportError)
	return wrapTemporaryIfNeeded(operation, err)
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil {
		return nil
	}
	if resilience.ClassifyTransportError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, "ollama "+operation, err)
	}
	return err
}
