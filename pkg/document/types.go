package document

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinContentLength is the minimum body length, in characters, a document
// needs before it is persisted.
const MinContentLength = 100

// ContentType classifies a fetched document
type ContentType string

const (
	ContentTypePDF  ContentType = "pdf"
	ContentTypeHTML ContentType = "html"
	ContentTypeDOCX ContentType = "docx"
)

// Extension returns the artifact file extension for the content type.
func (c ContentType) Extension() string {
	return string(c)
}

// RecordType returns the corpus record type for documents of this content type.
func (c ContentType) RecordType() string {
	if c == ContentTypeHTML {
		return "web_page"
	}
	return "law_or_regulation"
}

// ClassifyURL decides the content type from a normalized URL suffix.
func ClassifyURL(rawURL string) ContentType {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return ContentTypePDF
	case strings.HasSuffix(lower, ".docx"), strings.HasSuffix(lower, ".doc"):
		return ContentTypeDOCX
	default:
		return ContentTypeHTML
	}
}

// ExtractedDocument is the transient per-link result of extraction and title repair.
type ExtractedDocument struct {
	RawTitle      string      `json:"raw_title"`
	RepairedTitle string      `json:"repaired_title"`
	BodyText      string      `json:"body_text"`
	ContentType   ContentType `json:"content_type"`
	SourceURL     string      `json:"source_url"`
	ContentID     string      `json:"content_id"`
	Raw           []byte      `json:"-"`
}

// BodyLength counts the characters of the trimmed body.
func (d *ExtractedDocument) BodyLength() int {
	return utf8.RuneCountInString(strings.TrimSpace(d.BodyText))
}

// HasMinimumContent reports whether the body passes the minimum-content gate.
func (d *ExtractedDocument) HasMinimumContent() bool {
	return d.BodyLength() >= MinContentLength
}

// Validate checks if the document has required fields
func (d *ExtractedDocument) Validate() error {
	if d.SourceURL == "" {
		return fmt.Errorf("document source URL cannot be empty")
	}
	if d.ContentType == "" {
		return fmt.Errorf("document content type cannot be empty")
	}
	if !d.HasMinimumContent() {
		return fmt.Errorf("document body has %d characters, minimum is %d", d.BodyLength(), MinContentLength)
	}
	return nil
}

// Record is one line of the append-only corpus log.
type Record struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	SourceURL    string  `json:"source_url"`
	IssuedAt     *string `json:"issued_at"`
	UpdatedAt    *string `json:"updated_at"`
	Jurisdiction string  `json:"jurisdiction"`
	Body         string  `json:"body"`
	Version      int     `json:"version"`
	Filename     string  `json:"filename"`
	TextFile     string  `json:"text_file"`
}

// IDPrefix returns the first 8 hex characters of the content ID, used in filenames.
func IDPrefix(id string) string {
	if len(id) < 8 {
		return id
	}
	return id[:8]
}
