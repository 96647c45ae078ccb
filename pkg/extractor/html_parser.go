package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jaytaylor/html2text"
	"golang.org/x/net/html"
)

// bodySelector picks the elements whose text forms an HTML document's body.
const bodySelector = "p, article, .content"

// HTMLExtractor builds the body from paragraph, article and content-marked
// elements. The page title and the whole-page text go into metadata so the
// engine can derive a title when <title> is missing.
type HTMLExtractor struct{}

func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

func (h *HTMLExtractor) Extract(ctx context.Context, content []byte) (string, map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", map[string]string{"type": "html"}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var blocks []string
	doc.Find(bodySelector).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, strippedText(s))
	})
	text := strings.Join(blocks, "\n")

	metadata := map[string]string{
		"type":       "html",
		"characters": fmt.Sprintf("%d", len(text)),
		"title":      strings.TrimSpace(doc.Find("title").First().Text()),
	}

	pageText, err := html2text.FromString(string(content), html2text.Options{OmitLinks: true})
	if err != nil {
		pageText = doc.Text()
	}
	metadata["page_text"] = pageText

	return text, metadata, nil
}

// strippedText joins the trimmed, non-empty text nodes under s with spaces.
func strippedText(s *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}
