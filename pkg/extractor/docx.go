package extractor

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var xmlTag = regexp.MustCompile(`<[^>]+>`)

// DOCXExtractor handles DOCX file extraction
type DOCXExtractor struct{}

// Extract extracts text and metadata from DOCX content
func (d *DOCXExtractor) Extract(ctx context.Context, content []byte) (string, map[string]string, error) {
	metadata := map[string]string{
		"type": "docx",
		"size": fmt.Sprintf("%d", len(content)),
	}

	if len(content) < 4 {
		return "", metadata, &ProcessingError{
			Message: "file too small to be a valid DOCX document",
		}
	}

	// DOCX files are ZIP files; legacy binary .doc files fail here
	if content[0] != 0x50 || content[1] != 0x4B {
		return "", metadata, &ProcessingError{
			Message: fmt.Sprintf("not a valid DOCX file - missing ZIP signature: %x", content[:4]),
		}
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", metadata, &ProcessingError{
			Message: fmt.Sprintf("failed to parse DOCX: %v", err),
		}
	}
	defer doc.Close()

	// GetContent returns the raw document.xml
	raw := doc.Editable().GetContent()
	raw = strings.ReplaceAll(raw, "</w:p>", "\n")
	text := html.UnescapeString(xmlTag.ReplaceAllString(raw, ""))
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))

	metadata["text_length"] = fmt.Sprintf("%d", len(text))
	metadata["word_count"] = fmt.Sprintf("%d", len(strings.Fields(text)))

	if text == "" {
		return "", metadata, &ProcessingError{
			Message: "DOCX document contains no extractable text",
		}
	}

	return text, metadata, nil
}
