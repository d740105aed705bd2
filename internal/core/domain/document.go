package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	Title       string         `json:"title"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	SourceLink  string         `json:"source_link,omitempty"`
	Status      DocumentStatus `json:"status"`
	PageCount   int            `json:"page_count"`
	ChunkCount  int            `json:"chunk_count"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Page is the extracted text of one PDF page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Chunk is one token window of a page, ready to be handed to the index.
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	SourceID   string `json:"source"`
	Page       int    `json:"page"`
	Text       string `json:"content"`
	Link       string `json:"drive_url,omitempty"`
}

// BulkReport summarizes one bulk write against the index.
type BulkReport struct {
	Attempted  int    `json:"attempted"`
	Indexed    int    `json:"indexed"`
	Failed     int    `json:"failed"`
	FirstError string `json:"first_error,omitempty"`
}
