package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Caia-Tech/caia-legal-corpus/pkg/document"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/titlerepair"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// ProcessingError represents a non-retryable extraction error
type ProcessingError struct {
	Message string
}

func (e *ProcessingError) Error() string {
	return e.Message
}

// TextSource is a primary PDF text extraction routine.
type TextSource func(content []byte, maxPages int) (string, error)

// PageRecognizer renders PDF pages and runs OCR over them.
type PageRecognizer interface {
	RecognizePDF(ctx context.Context, content []byte, maxPages int) (string, error)
}

// ReadPDFText extracts the embedded text layer with ledongthuc/pdf. The
// reader panics on some malformed object tables; those panics come back as a
// *ProcessingError.
func ReadPDFText(content []byte, maxPages int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ProcessingError{Message: fmt.Sprintf("malformed PDF: %v", r)}
		}
	}()

	if len(content) < 4 || string(content[:4]) != "%PDF" {
		return "", &ProcessingError{
			Message: fmt.Sprintf("not a valid PDF file - content starts with: %q", string(content[:min(20, len(content))])),
		}
	}

	doc, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", &ProcessingError{Message: fmt.Sprintf("failed to parse PDF: %v", err)}
	}

	var b strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		if maxPages > 0 && i > maxPages {
			break
		}
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// PDFExtractor handles PDF files: the text layer first, OCR when the text
// layer is too short or carries no Arabic.
type PDFExtractor struct {
	Source      TextSource
	Recognizer  PageRecognizer
	EnableOCR   bool
	MaxPages    int
	OCRMaxPages int
	OCRMinChars int
}

// Extract extracts text and metadata from PDF content
func (p *PDFExtractor) Extract(ctx context.Context, content []byte) (string, map[string]string, error) {
	metadata := map[string]string{
		"type":     "pdf",
		"size":     fmt.Sprintf("%d", len(content)),
		"ocr_used": "false",
	}

	source := p.Source
	if source == nil {
		source = ReadPDFText
	}
	text, primaryErr := source(content, p.MaxPages)
	if primaryErr != nil {
		log.Debug().Err(primaryErr).Msg("Primary PDF extraction failed")
		text = ""
	}

	if p.EnableOCR && p.Recognizer != nil && needsOCR(text) {
		metadata["ocr_attempted"] = "true"
		ocrText, err := p.Recognizer.RecognizePDF(ctx, content, p.OCRMaxPages)
		ocrText = strings.TrimSpace(ocrText)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("OCR failed, keeping primary text")
		case utf8.RuneCountInString(ocrText) > p.OCRMinChars:
			text = ocrText
			metadata["ocr_used"] = "true"
		}
	}

	metadata["text_length"] = fmt.Sprintf("%d", utf8.RuneCountInString(text))

	if text == "" && primaryErr != nil {
		return "", metadata, primaryErr
	}
	return text, metadata, nil
}

func needsOCR(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < document.MinContentLength || !titlerepair.HasArabic(text)
}
