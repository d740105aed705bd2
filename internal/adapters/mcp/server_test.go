package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
)

type queryFake struct {
	last domain.QueryRequest
	err  error
}

func (f *queryFake) Query(_ context.Context, req domain.QueryRequest) (*domain.AnswerResult, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AnswerResult{
		Query:     req.Text,
		Mode:      req.Mode,
		Answer:    "Twenty days [Handbook p.4]",
		Outcome:   domain.OutcomeAnswered,
		Evidence:  []domain.ContextBlock{{ID: "c1", Title: "Handbook", SourceID: "handbook.pdf", Page: 4}},
		Results:   []domain.PresentationBlock{},
		Citations: []domain.Citation{{Title: "Handbook", Page: 4, SourceID: "handbook.pdf"}},
	}, nil
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = askToolName
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %+v", res)
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestAskHandlerReturnsAnswerJSON(t *testing.T) {
	query := &queryFake{}
	res, err := askHandler(query)(context.Background(), callRequest(map[string]any{
		"q":    "how many leave days?",
		"mode": "bm25",
		"size": float64(3),
	}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if query.last.Text != "how many leave days?" || query.last.Mode != domain.ModeBM25 || query.last.Size != 3 {
		t.Fatalf("unexpected request: %+v", query.last)
	}

	var body domain.AnswerResult
	if err := json.Unmarshal([]byte(resultText(t, res)), &body); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if body.Outcome != domain.OutcomeAnswered || len(body.Citations) != 1 {
		t.Fatalf("unexpected result: %+v", body)
	}
}

func TestAskHandlerDefaultsToHybrid(t *testing.T) {
	query := &queryFake{}
	if _, err := askHandler(query)(context.Background(), callRequest(map[string]any{"q": "x"})); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if query.last.Mode != domain.ModeHybrid || query.last.Size != 0 {
		t.Fatalf("unexpected request: %+v", query.last)
	}
}

func TestAskHandlerMissingQuestionIsToolError(t *testing.T) {
	query := &queryFake{}
	res, err := askHandler(query)(context.Background(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected tool error for missing q")
	}
}

func TestAskHandlerQueryFailureIsToolError(t *testing.T) {
	query := &queryFake{err: domain.WrapError(domain.ErrRetrieval, "retrieve hybrid", errors.New("all adapters failed"))}
	res, err := askHandler(query)(context.Background(), callRequest(map[string]any{"q": "x"}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected tool error")
	}
}

func TestAskToolRequiresQuestion(t *testing.T) {
	tool := askTool()
	if tool.Name != askToolName {
		t.Fatalf("unexpected tool name %q", tool.Name)
	}
	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "q" {
		t.Fatalf("expected q to be the only required argument, got %v", tool.InputSchema.Required)
	}
	for _, arg := range []string{"q", "mode", "size"} {
		if _, ok := tool.InputSchema.Properties[arg]; !ok {
			t.Fatalf("expected %s in tool schema", arg)
		}
	}
}
