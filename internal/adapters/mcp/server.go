package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
	"github.com/kirillkom/pdf-rag-engine/internal/core/ports"
)

const (
	serverVersion = "1.0.0"
	askToolName   = "ask_documents"
)

// NewServer exposes the query service as a single tool over MCP.
func NewServer(name string, query ports.QueryService) *server.MCPServer {
	s := server.NewMCPServer(name, serverVersion, server.WithToolCapabilities(false))
	s.AddTool(askTool(), askHandler(query))
	return s
}

// Serve blocks on stdin/stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func askTool() mcp.Tool {
	return mcp.NewTool(askToolName,
		mcp.WithDescription("Answer a question from the indexed PDF corpus. The answer cites [Title p.Page] and comes with the supporting passages."),
		mcp.WithString("q",
			mcp.Required(),
			mcp.Description("The question to answer."),
		),
		mcp.WithString("mode",
			mcp.Description("Retrieval strategy. Defaults to hybrid."),
			mcp.Enum(string(domain.ModeHybrid), string(domain.ModeBM25), string(domain.ModeELSER), string(domain.ModeDense)),
		),
		mcp.WithNumber("size",
			mcp.Description("Number of ranked passages to return."),
		),
	)
}

func askHandler(query ports.QueryService) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("q")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := query.Query(ctx, domain.QueryRequest{
			Text: question,
			Mode: domain.RetrievalMode(req.GetString("mode", string(domain.ModeHybrid))),
			Size: req.GetInt("size", 0),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode answer: %w", err)
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}
