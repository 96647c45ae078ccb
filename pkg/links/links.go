// Package links discovers candidate document links on a fetched HTML page.
//
// Discovery combines a generic rule, applied to every page, with an ordered
// registry of host rules. The first host rule whose matcher accepts the page
// host contributes site-specific candidates ahead of the generic ones.
package links

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Source tells which rule discovered a candidate.
type Source string

const (
	SourceGeneric      Source = "generic"
	SourceSiteSpecific Source = "site-specific"
)

// Candidate is a discovered link.
type Candidate struct {
	URL    string `json:"url"`
	Source Source `json:"source"`
}

// HostRule is a per-site discovery strategy.
type HostRule interface {
	Name() string
	Match(host string) bool
	Extract(doc *goquery.Document, base *url.URL) []Candidate
}

// Registry holds host rules in priority order.
type Registry struct {
	rules []HostRule
}

// NewRegistry creates a registry with the given rules, first match wins.
func NewRegistry(rules ...HostRule) *Registry {
	return &Registry{rules: rules}
}

// DefaultRegistry knows the Muqtafi and Ministry of Justice portals.
func DefaultRegistry() *Registry {
	return NewRegistry(&MuqtafiRule{}, &MOJRule{})
}

// Register appends a rule at the lowest priority.
func (r *Registry) Register(rule HostRule) {
	r.rules = append(r.rules, rule)
}

// Lookup returns the first rule matching host, or nil.
func (r *Registry) Lookup(host string) HostRule {
	host = strings.ToLower(host)
	for _, rule := range r.rules {
		if rule.Match(host) {
			return rule
		}
	}
	return nil
}

// Extract parses page and returns de-duplicated candidates. pageURL is used
// both for host dispatch and to resolve relative hrefs.
func (r *Registry) Extract(page []byte, pageURL string) ([]Candidate, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	generic := Generic(doc, base)
	rule := r.Lookup(base.Hostname())
	if rule == nil {
		return dedupe(generic), nil
	}
	specific := rule.Extract(doc, base)
	if len(specific) == 0 {
		return dedupe(generic), nil
	}
	return dedupe(append(specific, generic...)), nil
}

var documentExtensions = []string{".pdf", ".doc", ".docx"}

var legalPathMarkers = []string{"/law/", "/laws", "/legislation", "/decisions", "/judgment", "/court/"}

// Generic keeps anchors that point at a document file or a legal-looking path.
func Generic(doc *goquery.Document, base *url.URL) []Candidate {
	var out []Candidate
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs, ok := resolve(base, href)
		if !ok {
			return
		}
		if IsDocumentURL(abs.String()) || hasLegalPath(abs.Path) {
			out = append(out, Candidate{URL: abs.String(), Source: SourceGeneric})
		}
	})
	return out
}

// IsDocumentURL reports whether the lowercase URL ends with a document extension.
func IsDocumentURL(u string) bool {
	lower := strings.ToLower(u)
	for _, ext := range documentExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func hasLegalPath(path string) bool {
	lower := strings.ToLower(path)
	for _, marker := range legalPathMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func resolve(base *url.URL, href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	return base.ResolveReference(ref), true
}

func dedupe(in []Candidate) []Candidate {
	seen := make(map[string]bool, len(in))
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		if seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		out = append(out, c)
	}
	return out
}
