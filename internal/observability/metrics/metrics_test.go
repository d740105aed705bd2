package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRetrievalObserverCountsByStatus(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	observer := m.RetrievalObserver("api")

	observer.ObserveRetrieval("bm25", 5, nil)
	observer.ObserveRetrieval("bm25", 3, nil)
	observer.ObserveRetrieval("elser", 0, errors.New("down"))

	if got := testutil.ToFloat64(m.retrievalTotal.WithLabelValues("api", "bm25", "ok")); got != 2 {
		t.Fatalf("expected 2 ok bm25 calls, got %v", got)
	}
	if got := testutil.ToFloat64(m.retrievalTotal.WithLabelValues("api", "elser", "error")); got != 1 {
		t.Fatalf("expected 1 failed elser call, got %v", got)
	}
}

func TestRecordQueryByOutcome(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	m.RecordQuery("api", "hybrid", "answered", 5, 200*time.Millisecond)
	m.RecordQuery("api", "hybrid", "refused", 0, time.Millisecond)
	m.RecordQuery("api", "", "", 0, time.Millisecond)

	if got := testutil.ToFloat64(m.queryTotal.WithLabelValues("api", "hybrid", "answered")); got != 1 {
		t.Fatalf("expected 1 answered query, got %v", got)
	}
	if got := testutil.ToFloat64(m.queryTotal.WithLabelValues("api", "unknown", "unknown")); got != 1 {
		t.Fatalf("expected unknown labels to be used, got %v", got)
	}
}

func TestMiddlewareNormalizesDocumentPath(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	handler := m.Middleware("api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/documents/abc", nil))

	if got := testutil.ToFloat64(m.requestTotal.WithLabelValues("api", http.MethodGet, "/v1/documents/{document_id}", "404")); got != 1 {
		t.Fatalf("expected normalized path counter, got %v", got)
	}
}

func TestWorkerRecordIngestion(t *testing.T) {
	m := NewWorkerMetrics("worker")
	m.StartDocument()
	m.FinishDocument("worker", time.Second, nil)
	m.RecordIngestion("worker", 3, 12)

	if got := testutil.ToFloat64(m.chunksIndexed.WithLabelValues("worker")); got != 12 {
		t.Fatalf("expected 12 chunks, got %v", got)
	}
	if got := testutil.ToFloat64(m.processTotal.WithLabelValues("worker", "success")); got != 1 {
		t.Fatalf("expected one successful document, got %v", got)
	}
}
