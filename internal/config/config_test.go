package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRetrievalDefaults(t *testing.T) {
	for _, key := range []string{"CHUNK_TOKENS", "CHUNK_OVERLAP", "RAG_FUSION_RRF_K", "RAG_GENERATION_TOP_K", "LEXICAL_FIELDS", "DENSE_K", "ES_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ChunkTokens != 300 || cfg.ChunkOverlap != 60 {
		t.Fatalf("unexpected chunk defaults %d/%d", cfg.ChunkTokens, cfg.ChunkOverlap)
	}
	if cfg.RAGFusionRRFK != 60 || cfg.RAGGenerationTopK != 5 {
		t.Fatalf("unexpected fusion defaults k=%d topk=%d", cfg.RAGFusionRRFK, cfg.RAGGenerationTopK)
	}
	if strings.Join(cfg.LexicalFields, ",") != "title^2,content" {
		t.Fatalf("unexpected lexical fields %v", cfg.LexicalFields)
	}
	if cfg.DenseK != 50 || cfg.DenseNumCandidates != 750 {
		t.Fatalf("unexpected knn defaults %d/%d", cfg.DenseK, cfg.DenseNumCandidates)
	}
	if len(cfg.ElasticURLs) != 1 || cfg.ElasticURLs[0] != "http://localhost:9200" {
		t.Fatalf("unexpected es urls %v", cfg.ElasticURLs)
	}
	if cfg.RetrievalRetryAttempts != 1 {
		t.Fatalf("retrieval must not retry by default, got %d", cfg.RetrievalRetryAttempts)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("ES_URL", "http://es-1:9200, http://es-2:9200,")
	t.Setenv("RAG_FUSION_RRF_K", "75")
	t.Setenv("OLLAMA_TEMPERATURE", "0.5")
	t.Setenv("BREAKER_ENABLED", "false")
	t.Setenv("CHUNK_TOKENS", "not-a-number")

	cfg := Load()
	if len(cfg.ElasticURLs) != 2 || cfg.ElasticURLs[1] != "http://es-2:9200" {
		t.Fatalf("unexpected es urls %v", cfg.ElasticURLs)
	}
	if cfg.RAGFusionRRFK != 75 || cfg.OllamaTemperature != 0.5 || cfg.BreakerEnabled {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ChunkTokens != 300 {
		t.Fatalf("invalid int must fall back, got %d", cfg.ChunkTokens)
	}
}

func TestValidateReportsMissingIdentifiers(t *testing.T) {
	t.Setenv("ELSER_ENDPOINT_ID", "")
	cfg := Load()
	cfg.OllamaGenModel = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"ELSER_ENDPOINT_ID", "OLLAMA_GEN_MODEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in %v", want, err)
		}
	}

	cfg.ELSEREndpointID = "my-elser-endpoint-01"
	cfg.OllamaGenModel = "llama3.2"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error %v", err)
	}
}

func TestLoadGuardrailFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardrail.yaml")
	content := "denylist:\n  - exploit kit\n  - phishing kit\nrefusal_phrases:\n  - \"No answer.\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	phrases, err := LoadGuardrailFile(path)
	if err != nil {
		t.Fatalf("LoadGuardrailFile() error = %v", err)
	}
	if len(phrases.Denylist) != 2 || phrases.RefusalPhrases[0] != "No answer." {
		t.Fatalf("unexpected phrases %+v", phrases)
	}

	empty, err := LoadGuardrailFile("")
	if err != nil || empty.Denylist != nil {
		t.Fatalf("empty path must yield no overrides, got %+v %v", empty, err)
	}

	if _, err := LoadGuardrailFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
