package extractor

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Caia-Tech/caia-legal-corpus/pkg/document"
	"github.com/rs/zerolog/log"
)

// minHTMLTitleLength is the shortest <title> accepted before falling back to
// a content-derived title.
const minHTMLTitleLength = 5

// Extractor turns fetched bytes into body text plus metadata.
type Extractor interface {
	Extract(ctx context.Context, content []byte) (string, map[string]string, error)
}

// OCRCapability says whether page OCR can run in this build.
type OCRCapability int

const (
	OCRUnavailable OCRCapability = iota
	OCRAvailable
)

func (c OCRCapability) String() string {
	if c == OCRAvailable {
		return "available"
	}
	return "unavailable"
}

// Capabilities describes the optional extraction backends present.
type Capabilities struct {
	OCR OCRCapability
}

// Options configures extraction.
type Options struct {
	EnableOCR   bool   `json:"enable_ocr" yaml:"enable_ocr"`
	OCRLanguage string `json:"ocr_language" yaml:"ocr_language"`
	OCRMaxPages int    `json:"ocr_max_pages" yaml:"ocr_max_pages"`
	OCRMinChars int    `json:"ocr_min_chars" yaml:"ocr_min_chars"`
	PDFMaxPages int    `json:"pdf_max_pages" yaml:"pdf_max_pages"`
}

// DefaultOptions returns the crawler's extraction defaults.
func DefaultOptions() Options {
	return Options{
		EnableOCR:   false,
		OCRLanguage: "ara",
		OCRMaxPages: 5,
		OCRMinChars: 50,
		PDFMaxPages: 1000,
	}
}

// Engine dispatches on content type and assembles an ExtractedDocument.
type Engine struct {
	extractors map[document.ContentType]Extractor
	caps       Capabilities
}

// NewEngine builds an engine. recognizer may be nil when caps reports OCR as
// unavailable.
func NewEngine(opts Options, caps Capabilities, recognizer PageRecognizer) *Engine {
	return &Engine{
		extractors: map[document.ContentType]Extractor{
			document.ContentTypePDF: &PDFExtractor{
				Source:      ReadPDFText,
				Recognizer:  recognizer,
				EnableOCR:   opts.EnableOCR && caps.OCR == OCRAvailable && recognizer != nil,
				MaxPages:    opts.PDFMaxPages,
				OCRMaxPages: opts.OCRMaxPages,
				OCRMinChars: opts.OCRMinChars,
			},
			document.ContentTypeHTML: NewHTMLExtractor(),
			document.ContentTypeDOCX: &DOCXExtractor{},
		},
		caps: caps,
	}
}

// Capabilities reports what the engine was built with.
func (e *Engine) Capabilities() Capabilities {
	return e.caps
}

// SetExtractor overrides the extractor for one content type.
func (e *Engine) SetExtractor(ct document.ContentType, x Extractor) {
	e.extractors[ct] = x
}

// Extract produces the document for content fetched from sourceURL. HTML
// content must already be decoded to UTF-8. An extraction error still returns
// a document with whatever text was recovered.
func (e *Engine) Extract(ctx context.Context, ct document.ContentType, content []byte, sourceURL string) (*document.ExtractedDocument, error) {
	x, ok := e.extractors[ct]
	if !ok {
		return nil, &ProcessingError{Message: fmt.Sprintf("no extractor for content type %q", ct)}
	}

	text, metadata, err := x.Extract(ctx, content)
	doc := &document.ExtractedDocument{
		BodyText:    strings.TrimSpace(text),
		ContentType: ct,
		SourceURL:   sourceURL,
		Raw:         content,
	}

	switch ct {
	case document.ContentTypeHTML:
		doc.RawTitle = htmlTitle(metadata, sourceURL)
	default:
		doc.RawTitle = ContentTitle(doc.BodyText, sourceURL)
	}

	log.Debug().
		Str("url", sourceURL).
		Str("content_type", string(ct)).
		Int("body_length", doc.BodyLength()).
		Str("ocr_used", metadata["ocr_used"]).
		Msg("Extracted document")

	return doc, err
}

func htmlTitle(metadata map[string]string, sourceURL string) string {
	title := strings.TrimSpace(metadata["title"])
	if utf8.RuneCountInString(title) < minHTMLTitleLength {
		return ContentTitle(metadata["page_text"], sourceURL)
	}
	return title
}
