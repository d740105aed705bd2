package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
	"github.com/kirillkom/pdf-rag-engine/internal/core/ports"
)

// Extractor reads a stored document and returns its text page by page.
// PDFs are parsed; UTF-8 text files are returned as a single page.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) ExtractPages(ctx context.Context, doc *domain.Document) ([]domain.Page, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	if isPDF(doc, raw) {
		return ParsePDF(raw)
	}
	if !utf8.Valid(raw) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract pages", fmt.Errorf("unsupported binary format: %s", doc.Filename))
	}
	return []domain.Page{{Number: 1, Text: strings.TrimSpace(string(raw))}}, nil
}

// ParsePDF extracts plain text for every page. Pages whose text cannot be
// decoded are returned empty so page numbers stay aligned.
func ParsePDF(raw []byte) (pages []domain.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, domain.WrapError(domain.ErrInvalidInput, "parse pdf", fmt.Errorf("corrupt pdf: %v", r))
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse pdf", err)
	}

	total := r.NumPage()
	if total == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse pdf", errors.New("pdf has no pages"))
	}

	pages = make([]domain.Page, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		page := domain.Page{Number: i}
		if !p.V.IsNull() {
			if text, err := p.GetPlainText(nil); err == nil {
				page.Text = strings.TrimSpace(text)
			}
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func isPDF(doc *domain.Document, raw []byte) bool {
	if bytes.HasPrefix(raw, []byte("%PDF-")) {
		return true
	}
	return doc.MimeType == "application/pdf" || strings.EqualFold(filepath.Ext(doc.Filename), ".pdf")
}
