package extractor

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Caia-Tech/caia-legal-corpus/pkg/titlerepair"
)

// FallbackTitle is used when neither content nor URL yields a title.
const FallbackTitle = "وثيقة قانونية"

const (
	minLineTitle = 20
	maxLineTitle = 150
)

// numberedInstrument matches "<instrument> [رقم] N لسنة YYYY".
func numberedInstrument(keyword string) *regexp.Regexp {
	return regexp.MustCompile(keyword + `[\s\p{Z}]+(?:رقم[\s\p{Z}]+)?(\p{Nd}+\.?\p{Nd}*)[\s\p{Z}]+لسنة[\s\p{Z}]+(\p{Nd}+)`)
}

var numberedPatterns = []*regexp.Regexp{
	numberedInstrument("قانون"),
	numberedInstrument("مرسوم"),
	numberedInstrument("قرار"),
	numberedInstrument("نظام"),
}

var (
	namedLaw  = regexp.MustCompile(`قانون[\s\p{Z}]+([^.]+?)[\s\p{Z}]+رقم`)
	regarding = regexp.MustCompile(`بشأن[\s\p{Z}]+([^.]+)`)
)

var urlSuffixes = []string{".pdf", ".html", ".php"}

// ContentTitle derives a title from extracted text, in order: a numbered
// law/decree/decision/regulation, a named law, a "regarding" clause, the first
// Arabic line of moderate length, the URL's last path segment, FallbackTitle.
func ContentTitle(text, sourceURL string) string {
	for _, re := range numberedPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return "قانون " + m[1] + " لسنة " + m[2]
		}
	}
	for _, re := range []*regexp.Regexp{namedLaw, regarding} {
		if m := re.FindStringSubmatch(text); m != nil && m[1] != "" {
			return "قانون " + m[1]
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		n := utf8.RuneCountInString(line)
		if titlerepair.HasArabic(line) && n > minLineTitle && n < maxLineTitle {
			return line
		}
	}

	if u, err := url.Parse(sourceURL); err == nil {
		segments := strings.Split(u.Path, "/")
		name := segments[len(segments)-1]
		for _, suffix := range urlSuffixes {
			name = strings.ReplaceAll(name, suffix, "")
		}
		if name != "" {
			return name
		}
	}
	return FallbackTitle
}
