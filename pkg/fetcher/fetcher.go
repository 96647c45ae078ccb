// Package fetcher performs the crawler's HTTP GETs.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent identifies the crawler to upstream portals.
const DefaultUserAgent = "LegalCrawler/1.0 (+contact: admin@example.com)"

// Config configures the fetcher.
type Config struct {
	UserAgent      string        `json:"user_agent" yaml:"user_agent"`
	Timeout        time.Duration `json:"timeout" yaml:"timeout"`
	MaxContentSize int64         `json:"max_content_size" yaml:"max_content_size"`
}

// DefaultConfig returns the crawler's fetch settings.
func DefaultConfig() *Config {
	return &Config{
		UserAgent:      DefaultUserAgent,
		Timeout:        25 * time.Second,
		MaxContentSize: 100 * 1024 * 1024, // 100MB
	}
}

// StatusError reports a response with a 4xx or 5xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// ErrTooLarge reports a body over Config.MaxContentSize.
var ErrTooLarge = errors.New("response body exceeds maximum content size")

// FetchedContent is one fetched response body.
type FetchedContent struct {
	URL         string
	FinalURL    string
	Body        []byte
	ContentType string
	Encoding    string
	StatusCode  int
}

// Text returns the body decoded from Encoding to UTF-8.
func (f *FetchedContent) Text() string {
	if f.Encoding == "" || f.Encoding == "utf-8" {
		return string(f.Body)
	}
	enc, _ := charset.Lookup(f.Encoding)
	if enc == nil {
		return string(f.Body)
	}
	decoded, err := enc.NewDecoder().Bytes(f.Body)
	if err != nil {
		return string(f.Body)
	}
	return string(decoded)
}

// DetectEncoding names the body's encoding. Bodies the sniffer can only guess
// at (the windows-1252 default) are treated as UTF-8 when they are valid
// UTF-8, since Arabic portals routinely omit their charset.
func DetectEncoding(body []byte, contentType string) string {
	_, name, certain := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || (utf8.Valid(body) && (!certain || name == "windows-1252")) {
		return "utf-8"
	}
	return name
}

// Fetcher issues GET requests with a fixed user agent, timeout and size cap.
type Fetcher struct {
	client *http.Client
	config *Config
}

// New creates a fetcher. A nil config uses DefaultConfig.
func New(config *Config) *Fetcher {
	if config == nil {
		config = DefaultConfig()
	}
	return &Fetcher{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
	}
}

// Fetch downloads rawURL. Statuses of 400 and above yield a *StatusError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	var reader io.Reader = resp.Body
	if f.config.MaxContentSize > 0 {
		reader = io.LimitReader(resp.Body, f.config.MaxContentSize+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", rawURL, err)
	}
	if f.config.MaxContentSize > 0 && int64(len(body)) > f.config.MaxContentSize {
		return nil, fmt.Errorf("GET %s: %w (%d bytes)", rawURL, ErrTooLarge, f.config.MaxContentSize)
	}

	contentType := resp.Header.Get("Content-Type")
	log.Debug().
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Fetched")

	return &FetchedContent{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		Body:        body,
		ContentType: contentType,
		Encoding:    DetectEncoding(body, contentType),
		StatusCode:  resp.StatusCode,
	}, nil
}
