package links

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const postbackMarker = "pdfpre.aspx?pdfpath="

// MuqtafiRule handles the Birzeit Muqtafi portal, whose document links are
// ASP.NET postbacks wrapping a PDFPre.aspx?PDFPath=... target.
type MuqtafiRule struct{}

func (m *MuqtafiRule) Name() string { return "muqtafi" }

func (m *MuqtafiRule) Match(host string) bool {
	return strings.Contains(host, "muqtafi.birzeit.edu")
}

func (m *MuqtafiRule) Extract(doc *goquery.Document, base *url.URL) []Candidate {
	var out []Candidate
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || !muqtafiCandidate(href) {
			return
		}
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "javascript:") && strings.Contains(lower, postbackMarker) {
			if found := postbackTargets(href, base); len(found) > 0 {
				out = append(out, found...)
				return
			}
		}
		if abs, ok := resolve(base, href); ok {
			out = append(out, Candidate{URL: abs.String(), Source: SourceSiteSpecific})
		}
	})
	return out
}

func muqtafiCandidate(href string) bool {
	lower := strings.ToLower(href)
	return strings.Contains(href, "pg/") ||
		strings.Contains(href, "rule") ||
		strings.Contains(href, "law") ||
		strings.Contains(lower, "legislation") ||
		strings.HasPrefix(href, "javascript:")
}

// postbackTargets pulls the PDFPre.aspx URL out of a javascript: href and
// returns it together with the PDF it points at.
func postbackTargets(href string, base *url.URL) []Candidate {
	start := strings.Index(strings.ToLower(href), postbackMarker)
	query := href[start:]
	if end := strings.IndexAny(query, `'")`); end >= 0 {
		query = query[:end]
	}
	pre, ok := resolve(base, query)
	if !ok {
		return nil
	}
	out := []Candidate{{URL: pre.String(), Source: SourceSiteSpecific}}
	if pdf, ok := PostbackPDF(pre); ok {
		out = append(out, Candidate{URL: pdf.String(), Source: SourceSiteSpecific})
	}
	return out
}

// PostbackPDF resolves the PDFPath query value of a PDFPre.aspx URL against it.
func PostbackPDF(pre *url.URL) (*url.URL, bool) {
	q := pre.Query()
	rel := q.Get("PDFPath")
	if rel == "" {
		rel = q.Get("pdfpath")
	}
	if rel == "" {
		return nil, false
	}
	return resolve(pre, rel)
}

var mojKeywords = []string{"تشريع", "قانون", "لوائح", "أنظمة"}

var mojHrefMarkers = []string{"/legislation", "/laws", "law", "legis"}

// MOJRule handles the Palestinian Ministry of Justice portal.
type MOJRule struct{}

func (m *MOJRule) Name() string { return "moj" }

func (m *MOJRule) Match(host string) bool {
	return strings.HasSuffix(host, "moj.pna.ps")
}

func (m *MOJRule) Extract(doc *goquery.Document, base *url.URL) []Candidate {
	var out []Candidate
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		text := strings.ToLower(strings.Join(strings.Fields(a.Text()), " "))
		if !containsAny(text, mojKeywords) && !containsAny(strings.ToLower(href), mojHrefMarkers) {
			return
		}
		if abs, ok := resolve(base, href); ok {
			out = append(out, Candidate{URL: abs.String(), Source: SourceSiteSpecific})
		}
	})
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
