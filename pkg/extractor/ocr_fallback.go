//go:build !ocr

package extractor

import "context"

// DetectCapabilities reports the backends compiled into this build.
func DetectCapabilities() Capabilities {
	return Capabilities{OCR: OCRUnavailable}
}

// unavailableRecognizer stands in when the binary is built without Tesseract.
type unavailableRecognizer struct {
	language string
}

// NewPageRecognizer returns a recognizer that always fails (fallback version).
func NewPageRecognizer(language string) PageRecognizer {
	return &unavailableRecognizer{language: language}
}

func (u *unavailableRecognizer) RecognizePDF(ctx context.Context, content []byte, maxPages int) (string, error) {
	return "", &ProcessingError{
		Message: "OCR functionality requires building with -tags ocr and Tesseract (" + u.language + " traineddata) installed",
	}
}
