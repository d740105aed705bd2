package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/pdf-rag-engine/internal/config"
	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
	"github.com/kirillkom/pdf-rag-engine/internal/core/ports"
	"github.com/kirillkom/pdf-rag-engine/internal/observability/metrics"
)

const (
	serviceName = "api"

	maxUploadBytes     = 64 << 20
	maxQueryBodyBytes  = 1 << 20
	backpressureWait   = 250 * time.Millisecond
	retryAfterSeconds  = "1"
	multipartMemoryCap = 8 << 20
)

type Router struct {
	cfg     config.Config
	ingest  ports.DocumentIngestor
	query   ports.QueryService
	docs    ports.DocumentReader
	metrics *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingest ports.DocumentIngestor,
	query ports.QueryService,
	docs ports.DocumentReader,
) *Router {
	return &Router{
		cfg:    cfg,
		ingest: ingest,
		query:  query,
		docs:   docs,
	}
}

// WithMetrics enables request and query metrics plus the /metrics endpoint.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocumentByID)
	mux.HandleFunc("POST /v1/rag/query", rt.queryRAG)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, backpressureWait)
	handler = rt.rateLimitMiddleware(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemoryCap); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		r.FormValue("source_link"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName)
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) queryRAG(w http.ResponseWriter, r *http.Request) {
	var req domain.QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	result, err := rt.query.Query(r.Context(), req)
	if err != nil {
		rt.recordQuery(queryModeLabel(string(req.Mode)), "error", 0, time.Since(start))
		writeError(w, err)
		return
	}
	rt.recordQuery(string(result.Mode), string(result.Outcome), len(result.Evidence), time.Since(start))

	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) recordQuery(mode, outcome string, evidence int, duration time.Duration) {
	if rt.metrics == nil {
		return
	}
	if mode == "" {
		mode = string(domain.ModeHybrid)
	}
	rt.metrics.RecordQuery(serviceName, mode, outcome, evidence, duration)
}

// queryModeLabel keeps the metric label set bounded to the known modes.
func queryModeLabel(raw string) string {
	mode, err := domain.ParseRetrievalMode(raw)
	if err != nil {
		return "invalid"
	}
	return string(mode)
}

func writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
