package titlerepair

import (
	"regexp"
	"strings"
	"unicode"
)

// Legal vocabulary used to judge whether a reversal produced readable Arabic.
const (
	termLaw         = "قانون"
	termDecision    = "قرار"
	termNumber      = "رقم"
	termForYear     = "لسنة"
	termDecree      = "مرسوم"
	termRegulation  = "نظام"
	termRegarding   = "بشأن"
	termCase        = "قضية"
	termCourt       = "محكمة"
	termLegislation = "تشريع"
	termByLaw       = "بقانون"
)

var legalVocabulary = []string{
	termLaw, termDecision, termNumber, termForYear, termDecree, termRegulation,
	termRegarding, termCase, termCourt, termLegislation,
	"فلسطين", "دولة", "وزارة", "العدل", "الرئيسية", "المحكمة", "القضية",
}

// corruptedTerms maps reversed legal words to their readable form. Applied in
// slice order at word boundaries.
var corruptedTerms = []struct {
	wrong string
	right string
}{
	{"مقر", termNumber},
	{"نوناقب", termByLaw},
	{"رارق", termDecision},
	{"ةنس", "سنة"},
}

var corruptedTermPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(corruptedTerms))
	for i, ct := range corruptedTerms {
		out[i] = regexp.MustCompile(regexp.QuoteMeta(ct.wrong))
	}
	return out
}()

const bracketChars = ")([]){}"

var (
	mirroredParenNumber = regexp.MustCompile(`\)(\p{Nd}+)\(`)
	mirroredYear        = regexp.MustCompile(`م(\p{Nd}{4})[\s\p{Z}]+ةنسل`)
	parenNumber         = regexp.MustCompile(`\((\p{Nd}+)\)`)
	fourDigits          = regexp.MustCompile(`(\p{Nd}{4})`)

	// مYYYY لسنة (N) رقم قرار
	scrambledDecisionNumber = regexp.MustCompile(`م(\p{Nd}{4})[\s\p{Z}]+لسنة[\s\p{Z}]*\((\p{Nd}+)\)[\s\p{Z}]+رقم[\s\p{Z}]+قرار`)
	// مYYYY لسنة (N) قرار
	scrambledDecision = regexp.MustCompile(`م(\p{Nd}{4})[\s\p{Z}]+لسنة[\s\p{Z}]*\((\p{Nd}+)\)[\s\p{Z}]+قرار`)
)

// ContainsLegalTerms reports whether s contains any legal vocabulary term.
func ContainsLegalTerms(s string) bool {
	for _, term := range legalVocabulary {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func reverseIfImproves(token string) string {
	if !HasArabic(token) && !strings.ContainsAny(token, bracketChars) && strings.IndexFunc(token, unicode.IsDigit) < 0 {
		return token
	}
	reversed := reverseRunes(token)
	if ContainsLegalTerms(reversed) && !ContainsLegalTerms(token) {
		return reversed
	}
	if isBracketMirrored(token) {
		return reversed
	}
	return token
}

// isBracketMirrored matches tokens such as ")1(" or "]2[".
func isBracketMirrored(token string) bool {
	return (strings.HasPrefix(token, ")") || strings.HasPrefix(token, "]")) &&
		(strings.HasSuffix(token, "(") || strings.HasSuffix(token, "["))
}

// FixArabicMirroring undoes character-order reversal. Token-level repair is
// tried first, then whole-string reversal; each is accepted only when it
// introduces legal vocabulary the input lacked.
func FixArabicMirroring(text string) string {
	if ContainsLegalTerms(text) {
		return text
	}
	candidate := nonSpaceRun.ReplaceAllStringFunc(text, reverseIfImproves)
	if ContainsLegalTerms(candidate) {
		return candidate
	}
	wholeReversed := reverseRunes(text)
	if ContainsLegalTerms(wholeReversed) {
		return wholeReversed
	}
	return text
}

// NormalizeLegalTerms rewrites literal garbling patterns: mirrored numbers,
// the mirrored "for year" phrase and reversed dictionary words.
func NormalizeLegalTerms(text string) string {
	out := CollapseSpaces(mirroredParenNumber.ReplaceAllString(text, "(${1})"))
	out = CollapseSpaces(replaceBounded(mirroredYear, out, func(g []string) string {
		return termForYear + " " + g[1]
	}))
	for i, ct := range corruptedTerms {
		right := ct.right
		out = CollapseSpaces(replaceBounded(corruptedTermPatterns[i], out, func([]string) string {
			return right
		}))
	}
	return out
}

// NormalizeSpecificOrderCases rewrites two fully scrambled field orders
// straight to "قرار رقم (N) لسنة YYYY". First match wins.
func NormalizeSpecificOrderCases(text string) string {
	for _, re := range []*regexp.Regexp{scrambledDecisionNumber, scrambledDecision} {
		if g := findBounded(re, text); g != nil {
			year, num := g[1], g[2]
			return termDecision + " " + termNumber + " (" + num + ") " + termForYear + " " + year
		}
	}
	return text
}

// ExtractYear finds a plausible year (1900-2099) in s, falling back to the
// mirrored "مYYYY ةنسل" form.
func ExtractYear(s string) string {
	for _, loc := range fourDigits.FindAllStringIndex(s, -1) {
		if !atWordBoundary(s, loc[0], loc[1]) {
			continue
		}
		if year := digitsValue(s[loc[0]:loc[1]]); year >= 1900 && year <= 2099 {
			return s[loc[0]:loc[1]]
		}
	}
	if g := findBounded(mirroredYear, s); g != nil {
		return g[1]
	}
	return ""
}

// digitsValue reads a run of ASCII, Arabic-Indic or Extended Arabic-Indic
// digits, so "٢٠٢٠" is 2020. It returns -1 when s holds anything else.
func digitsValue(s string) int {
	n := 0
	for _, r := range s {
		d := digitValue(r)
		if d < 0 {
			return -1
		}
		n = n*10 + d
	}
	return n
}

func digitValue(r rune) int {
	for _, zero := range []rune{'0', '\u0660', '\u06f0'} {
		if r >= zero && r <= zero+9 {
			return int(r - zero)
		}
	}
	return -1
}

// CanonicalizeLegalTitle resynthesizes "قرار بقانون رقم (N) لسنة YYYY" when the
// text carries the three keywords and some structural evidence. hint is the
// pre-repair title and is only consulted for a year.
func CanonicalizeLegalTitle(text, hint string) string {
	if !strings.Contains(text, termDecision) || !strings.Contains(text, termByLaw) || !strings.Contains(text, termNumber) {
		return text
	}

	var num, year string
	if m := parenNumber.FindStringSubmatch(text); m != nil {
		num = m[1]
	}
	if g := findBounded(fourDigits, text); g != nil {
		year = g[1]
	}
	if num == "" && year == "" && hint == "" {
		return text
	}
	if year == "" && hint != "" {
		year = ExtractYear(hint)
	}

	parts := []string{termDecision, termByLaw, termNumber}
	if num != "" {
		parts = append(parts, "("+num+")")
	}
	if year != "" {
		parts = append(parts, termForYear, year)
	}
	return CollapseSpaces(strings.Join(parts, " "))
}
