package main

import (
	"log/slog"
	"os"

	mcpadapter "github.com/kirillkom/pdf-rag-engine/internal/adapters/mcp"
	"github.com/kirillkom/pdf-rag-engine/internal/bootstrap"
	"github.com/kirillkom/pdf-rag-engine/internal/config"
	"github.com/kirillkom/pdf-rag-engine/internal/observability/logging"
)

const serviceName = "mcp"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, serviceName, cfg.LogLevel))

	app, err := bootstrap.NewQuery(cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}

	if err := mcpadapter.Serve(mcpadapter.NewServer(cfg.MCPServerName, app.QueryUC)); err != nil {
		slog.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
