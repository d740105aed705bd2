package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
	"github.com/kirillkom/pdf-rag-engine/internal/core/ports"
)

const (
	mimePDF   = "application/pdf"
	mimePlain = "text/plain"
)

// extensionTypes covers extensions the system mime table may lack.
var extensionTypes = map[string]string{
	".pdf":      mimePDF,
	".txt":      mimePlain,
	".text":     mimePlain,
	".md":       "text/markdown",
	".markdown": "text/markdown",
}

type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

// Upload stores the raw document, registers it and schedules processing.
// Only PDF and plain text uploads are accepted.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType, sourceLink string,
	body io.Reader,
) (*domain.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("filename is empty"))
	}
	mimeType, err := resolveMimeType(filename, mimeType)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", err)
	}
	link, err := normalizeSourceLink(sourceLink)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", err)
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:          id,
		Filename:    filepath.Base(filename),
		Title:       titleFromFilename(filename),
		MimeType:    mimeType,
		StoragePath: storageKey,
		SourceLink:  link,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		// Left as uploaded, the record would look queued forever.
		if markErr := uc.repo.UpdateStatus(ctx, doc.ID, domain.StatusFailed, "not queued: "+err.Error()); markErr != nil {
			slog.Error("document_mark_failed_error", "document_id", doc.ID, "error", markErr)
		}
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	slog.Info("document_uploaded", "document_id", doc.ID, "filename", doc.Filename, "mime_type", doc.MimeType)
	return doc, nil
}

// resolveMimeType trusts the extension when the client sent nothing or a
// generic type.
func resolveMimeType(filename, declared string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = typeByExtension(filename)
	}
	switch {
	case mediaType == mimePDF:
		return mimePDF, nil
	case strings.HasPrefix(mediaType, "text/"):
		return mediaType, nil
	case mediaType == "":
		return "", fmt.Errorf("cannot determine type of %q", filepath.Base(filename))
	default:
		return "", fmt.Errorf("unsupported type %q", mediaType)
	}
}

func typeByExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if known, ok := extensionTypes[ext]; ok {
		return known
	}
	mediaType, _, _ := mime.ParseMediaType(mime.TypeByExtension(ext))
	return mediaType
}

func normalizeSourceLink(raw string) (string, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return "", nil
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("source link %q is not an http(s) url", link)
	}
	return link, nil
}

func sanitizeFilename(name string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, filepath.Base(name))
	if strings.Trim(base, "._") == "" {
		return "document.bin"
	}
	return base
}

// titleFromFilename drops the directory and extension: "docs/Field Guide.pdf"
// becomes "Field Guide".
func titleFromFilename(name string) string {
	base := filepath.Base(name)
	title := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if title == "" {
		return base
	}
	return title
}
