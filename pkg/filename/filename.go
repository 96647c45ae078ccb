// Package filename turns repaired titles into filesystem-legal artifact names
// of the form "{title} - {id8}{suffix}.{ext}" and parses them back.
package filename

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Caia-Tech/caia-legal-corpus/pkg/titlerepair"
)

// MaxTitleLength is the crawl-time title length limit, in characters.
const MaxTitleLength = 150

const ellipsis = "..."

var illegalChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// Sanitize replaces filesystem-illegal characters with spaces and collapses whitespace.
func Sanitize(title string) string {
	return titlerepair.CollapseSpaces(illegalChars.ReplaceAllString(title, " "))
}

// SanitizeForRename is the rename-pass sanitizer: it also strips bidi controls
// and applies Unicode normalization before sanitizing.
func SanitizeForRename(title string) string {
	return Sanitize(titlerepair.NormalizeUnicodeArabic(titlerepair.StripBidiControls(title)))
}

// Truncate shortens titles longer than MaxTitleLength. Titles with more than
// five words keep their first and last three words around an ellipsis so a
// trailing number or year survives; shorter ones are cut hard.
func Truncate(title string) string {
	if utf8.RuneCountInString(title) <= MaxTitleLength {
		return title
	}
	words := strings.Fields(title)
	if len(words) > 5 {
		kept := append(append(append([]string{}, words[:3]...), ellipsis), words[len(words)-3:]...)
		return strings.Join(kept, " ")
	}
	return string([]rune(title)[:MaxTitleLength]) + ellipsis
}

// ForCrawl sanitizes and truncates a repaired title for a new artifact.
func ForCrawl(title string) string {
	return Truncate(Sanitize(title))
}

// CounterStyle is how a collision counter is rendered.
type CounterStyle int

const (
	CounterNone CounterStyle = iota
	CounterUnderscore
	CounterParen
)

// Name is a parsed or synthesized artifact filename.
type Name struct {
	Title   string
	Hash    string
	Counter int
	Style   CounterStyle
	Ext     string
}

// Base renders the name without extension.
func (n Name) Base() string {
	base := n.Title + " - " + n.Hash
	if n.Counter > 0 {
		switch n.Style {
		case CounterUnderscore:
			base += "_" + strconv.Itoa(n.Counter)
		case CounterParen:
			base += " (" + strconv.Itoa(n.Counter) + ")"
		}
	}
	return base
}

// String renders the full filename.
func (n Name) String() string {
	return n.Base() + "." + n.Ext
}

// WithExt returns a copy of n with another extension.
func (n Name) WithExt(ext string) Name {
	n.Ext = ext
	return n
}

var knownExtensions = map[string]bool{
	"pdf":  true,
	"txt":  true,
	"html": true,
	"docx": true,
}

var namePattern = regexp.MustCompile(`^(?P<title>.*?)[ _-]+(?P<hash>[0-9a-fA-F]{8})(?:_(?P<ucounter>\d+)|\s*\((?P<pcounter>\d+)\))?$`)

// Parse recognizes "<title> - <hash8>", "<title>_<hash8>" and their "_N" or
// " (N)" counter variants. ok is false when name does not follow the grammar.
func Parse(name string) (Name, bool) {
	ext := filepath.Ext(name)
	if ext == "" {
		return Name{}, false
	}
	base := strings.TrimSuffix(name, ext)
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if !knownExtensions[ext] {
		return Name{}, false
	}

	m := namePattern.FindStringSubmatch(titlerepair.StripBidiControls(base))
	if m == nil {
		return Name{}, false
	}
	n := Name{
		Title: titlerepair.CollapseSpaces(m[namePattern.SubexpIndex("title")]),
		Hash:  strings.ToLower(m[namePattern.SubexpIndex("hash")]),
		Ext:   ext,
	}
	if c := m[namePattern.SubexpIndex("ucounter")]; c != "" {
		n.Counter, _ = strconv.Atoi(c)
		n.Style = CounterUnderscore
	} else if c := m[namePattern.SubexpIndex("pcounter")]; c != "" {
		n.Counter, _ = strconv.Atoi(c)
		n.Style = CounterParen
	}
	return n, true
}

// ExistsFunc reports whether a candidate filename is already taken.
type ExistsFunc func(name string) bool

// InDirs returns an ExistsFunc checking each directory for the name with the
// paired extension. The map is keyed by directory, valued by extension.
func InDirs(dirs map[string]string) ExistsFunc {
	return func(base string) bool {
		for dir, ext := range dirs {
			if _, err := os.Stat(filepath.Join(dir, base+"."+ext)); err == nil {
				return true
			}
		}
		return false
	}
}

// ResolveCrawl returns the first free name for a new artifact, appending "_N"
// counters from 1 while the base is taken. exists receives the base name.
func ResolveCrawl(title, id8 string, exists ExistsFunc) Name {
	n := Name{Title: title, Hash: id8}
	for counter := 1; exists(n.Base()); counter++ {
		n.Counter = counter
		n.Style = CounterUnderscore
	}
	return n
}

// ResolveRename appends " (N)" to a full filename until exists reports it free.
func ResolveRename(name string, exists ExistsFunc) string {
	if !exists(name) {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, counter, ext)
		if !exists(candidate) {
			return candidate
		}
	}
}
