//go:build ocr

package extractor

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"
)

// DetectCapabilities reports the backends compiled into this build.
func DetectCapabilities() Capabilities {
	return Capabilities{OCR: OCRAvailable}
}

// TesseractRecognizer rasterizes PDF pages with MuPDF and reads them with Tesseract.
type TesseractRecognizer struct {
	Language             string // Tesseract language code (e.g., "ara", "ara+eng")
	PageSegmentationMode gosseract.PageSegMode
}

// NewPageRecognizer creates a recognizer for the given Tesseract language.
func NewPageRecognizer(language string) PageRecognizer {
	return &TesseractRecognizer{
		Language:             language,
		PageSegmentationMode: gosseract.PSM_AUTO,
	}
}

// RecognizePDF OCRs at most maxPages pages and joins their text.
func (o *TesseractRecognizer) RecognizePDF(ctx context.Context, content []byte, maxPages int) (string, error) {
	if len(content) == 0 {
		return "", &ProcessingError{Message: "no PDF content provided for OCR"}
	}

	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return "", &ProcessingError{Message: fmt.Sprintf("failed to open PDF for rendering: %v", err)}
	}
	defer doc.Close()

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(o.Language); err != nil {
		return "", &ProcessingError{
			Message: fmt.Sprintf("failed to set OCR language '%s': %v", o.Language, err),
		}
	}
	if err := client.SetPageSegMode(o.PageSegmentationMode); err != nil {
		return "", &ProcessingError{
			Message: fmt.Sprintf("failed to set page segmentation mode: %v", err),
		}
	}

	pages := doc.NumPage()
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}

	var parts []string
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return strings.Join(parts, "\n"), err
		}

		img, err := doc.Image(i)
		if err != nil {
			log.Debug().Err(err).Int("page", i+1).Msg("Failed to render page")
			continue
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			continue
		}
		if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
			return strings.Join(parts, "\n"), &ProcessingError{
				Message: fmt.Sprintf("failed to set OCR image data: %v", err),
			}
		}
		text, err := client.Text()
		if err != nil {
			log.Debug().Err(err).Int("page", i+1).Msg("OCR failed on page")
			continue
		}
		parts = append(parts, strings.TrimSpace(text))
	}

	return strings.Join(parts, "\n"), nil
}
