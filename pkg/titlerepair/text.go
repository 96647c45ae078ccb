package titlerepair

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const tatweel = '\u0640'

// bidiControls are directional formatting code points that carry no text and
// corrupt how titles render inside filenames.
var bidiControls = map[rune]bool{
	'\u200e': true, // LRM
	'\u200f': true, // RLM
	'\u202a': true, // LRE
	'\u202b': true, // RLE
	'\u202c': true, // PDF
	'\u202d': true, // LRO
	'\u202e': true, // RLO
	'\u2066': true, // LRI
	'\u2067': true, // RLI
	'\u2068': true, // FSI
	'\u2069': true, // PDI
	'\ufeff': true, // BOM / ZWNBSP
}

var (
	whitespaceRun = regexp.MustCompile(`[\s\p{Z}]+`)
	nonSpaceRun   = regexp.MustCompile(`[^\s\p{Z}]+`)
)

// StripBidiControls removes bidi control characters anywhere in s.
func StripBidiControls(s string) string {
	if !strings.ContainsFunc(s, isBidiControl) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isBidiControl(r) {
			return -1
		}
		return r
	}, s)
}

func isBidiControl(r rune) bool {
	return bidiControls[r]
}

// NormalizeUnicodeArabic applies NFKC, drops combining marks and removes tatweel.
func NormalizeUnicodeArabic(s string) string {
	t := transform.Chain(
		norm.NFKC,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == tatweel })),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// CollapseSpaces folds whitespace runs into one space and trims the ends.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// HasArabic reports whether s contains a rune from the Arabic block.
func HasArabic(s string) bool {
	return strings.ContainsFunc(s, isArabic)
}

func isArabic(r rune) bool {
	return r >= '\u0600' && r <= '\u06ff'
}

func reverseRunes(s string) string {
	rs := []rune(s)
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
	return string(rs)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// atWordBoundary reports whether s[start:end] is neither preceded nor followed
// by a word rune. Go's \b only understands ASCII, Arabic needs this.
func atWordBoundary(s string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(s[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		if r, _ := utf8.DecodeRuneInString(s[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

// replaceBounded replaces the word-bounded matches of re in s.
func replaceBounded(re *regexp.Regexp, s string, expand func(groups []string) string) string {
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringSubmatchIndex(s, -1) {
		start, end := loc[0], loc[1]
		if !atWordBoundary(s, start, end) {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString(expand(submatches(s, loc)))
		last = end
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

// findBounded returns the groups of the first word-bounded match of re in s.
func findBounded(re *regexp.Regexp, s string) []string {
	for _, loc := range re.FindAllStringSubmatchIndex(s, -1) {
		if atWordBoundary(s, loc[0], loc[1]) {
			return submatches(s, loc)
		}
	}
	return nil
}

func submatches(s string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return groups
}
