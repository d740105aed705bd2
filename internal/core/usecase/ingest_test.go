package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
)

type ingestRepoFake struct {
	created   *domain.Document
	status    domain.DocumentStatus
	statusMsg string
	err       error
}

func (f *ingestRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.err != nil {
		return f.err
	}
	copyDoc := *doc
	f.created = &copyDoc
	return nil
}

func (f *ingestRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	return nil, errors.New("not implemented")
}
func (f *ingestRepoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, msg string) error {
	f.status = status
	f.statusMsg = msg
	return nil
}
func (f *ingestRepoFake) SaveIngestionStats(context.Context, string, int, int) error {
	return errors.New("not implemented")
}

type ingestStorageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *ingestStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *ingestStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

type ingestQueueFake struct {
	documentID string
	err        error
}

func (f *ingestQueueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.documentID = documentID
	return nil
}

func (f *ingestQueueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func TestIngestUploadSuccess(t *testing.T) {
	repo := &ingestRepoFake{}
	storage := &ingestStorageFake{}
	queue := &ingestQueueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue)

	doc, err := uc.Upload(context.Background(), "report 1.pdf", "application/pdf", " https://drive/report ", bytes.NewBufferString("hello"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatalf("expected document id")
	}
	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected status uploaded, got %s", doc.Status)
	}
	if repo.created == nil {
		t.Fatalf("expected repo.Create call")
	}
	if queue.documentID != doc.ID {
		t.Fatalf("expected queued doc id %s, got %s", doc.ID, queue.documentID)
	}
	if !strings.Contains(storage.savedKey, "_report_1.pdf") {
		t.Fatalf("expected sanitized key suffix, got %s", storage.savedKey)
	}
	if storage.savedBody != "hello" {
		t.Fatalf("expected saved body hello, got %s", storage.savedBody)
	}
	if doc.Title != "report 1" || doc.SourceLink != "https://drive/report" {
		t.Fatalf("unexpected title/link: %q %q", doc.Title, doc.SourceLink)
	}
}

func TestIngestUploadQueueError(t *testing.T) {
	repo := &ingestRepoFake{}
	storage := &ingestStorageFake{}
	queue := &ingestQueueFake{err: errors.New("queue down")}
	uc := NewIngestDocumentUseCase(repo, storage, queue)

	_, err := uc.Upload(context.Background(), "report.pdf", "application/pdf", "", bytes.NewBufferString("hello"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "publish ingestion event") {
		t.Fatalf("expected publish error, got %v", err)
	}
	if repo.status != domain.StatusFailed || !strings.Contains(repo.statusMsg, "queue down") {
		t.Fatalf("expected document marked failed, got %q %q", repo.status, repo.statusMsg)
	}
}

func TestIngestUploadRejectsEmptyFilename(t *testing.T) {
	storage := &ingestStorageFake{}
	uc := NewIngestDocumentUseCase(&ingestRepoFake{}, storage, &ingestQueueFake{})

	_, err := uc.Upload(context.Background(), "  ", "application/pdf", "", bytes.NewBufferString("x"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if storage.savedKey != "" {
		t.Fatalf("storage must not be touched")
	}
}

func TestIngestUploadResolvesMimeType(t *testing.T) {
	cases := []struct {
		filename string
		declared string
		want     string
	}{
		{"a.pdf", "", "application/pdf"},
		{"a.pdf", "application/octet-stream", "application/pdf"},
		{"notes.txt", "", "text/plain"},
		{"scan", "application/pdf", "application/pdf"},
		{"readme.md", "text/markdown; charset=utf-8", "text/markdown"},
	}
	for _, tc := range cases {
		repo := &ingestRepoFake{}
		uc := NewIngestDocumentUseCase(repo, &ingestStorageFake{}, &ingestQueueFake{})
		doc, err := uc.Upload(context.Background(), tc.filename, tc.declared, "", bytes.NewBufferString("x"))
		if err != nil {
			t.Fatalf("Upload(%q, %q) error = %v", tc.filename, tc.declared, err)
		}
		if doc.MimeType != tc.want {
			t.Fatalf("Upload(%q, %q) mime = %q, want %q", tc.filename, tc.declared, doc.MimeType, tc.want)
		}
	}
}

func TestIngestUploadRejectsUnsupportedInput(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		declared string
		link     string
	}{
		{"image", "photo.png", "image/png", ""},
		{"unknown extension", "data.bin", "", ""},
		{"bad link scheme", "a.pdf", "application/pdf", "ftp://files/a.pdf"},
		{"relative link", "a.pdf", "application/pdf", "/docs/a.pdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			storage := &ingestStorageFake{}
			uc := NewIngestDocumentUseCase(&ingestRepoFake{}, storage, &ingestQueueFake{})
			_, err := uc.Upload(context.Background(), tc.filename, tc.declared, tc.link, bytes.NewBufferString("x"))
			if !domain.IsKind(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if storage.savedKey != "" {
				t.Fatalf("storage must not be touched")
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report 1.pdf":     "report_1.pdf",
		"../../etc/passwd": "passwd",
		"отчёт.pdf":        "_____.pdf",
		"..":               "document.bin",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTitleFromFilename(t *testing.T) {
	cases := map[string]string{
		"docs/Field Guide.pdf": "Field Guide",
		"plain":                "plain",
		".pdf":                 ".pdf",
	}
	for in, want := range cases {
		if got := titleFromFilename(in); got != want {
			t.Fatalf("titleFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
