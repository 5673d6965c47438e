package discovery

import (
	"sort"
	"strings"
)

// DefaultKeywords is the keyword set used when configuration does not supply one.
var DefaultKeywords = []string{"fuel", "petro", "verifone", "tank", "inge"}

// DefaultResourceExtensions is the resource extension set used when
// configuration does not supply one.
var DefaultResourceExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".svg",
	".css", ".js",
	".pdf", ".doc", ".docx", ".xlsx",
}

// KeywordSet is a named set of lower-case substrings.
type KeywordSet struct {
	name     string
	keywords []string
}

// NewKeywordSet builds a KeywordSet. Keywords are lower-cased, trimmed and
// de-duplicated; empty entries are dropped because they would match anything.
func NewKeywordSet(name string, keywords ...string) KeywordSet {
	return KeywordSet{name: name, keywords: normalize(keywords, false)}
}

// Name returns the set's name.
func (k KeywordSet) Name() string { return k.name }

// Keywords returns a copy of the keywords in sorted order.
func (k KeywordSet) Keywords() []string {
	out := make([]string, len(k.keywords))
	copy(out, k.keywords)
	return out
}

// Len returns the number of keywords.
func (k KeywordSet) Len() int { return len(k.keywords) }

// Match returns the first keyword contained in s, compared case-insensitively.
func (k KeywordSet) Match(s string) (string, bool) {
	s = strings.ToLower(s)
	for _, kw := range k.keywords {
		if strings.Contains(s, kw) {
			return kw, true
		}
	}
	return "", false
}

// ExtensionSet is a named set of URL suffixes such as ".pdf".
type ExtensionSet struct {
	name       string
	extensions []string
}

// NewExtensionSet builds an ExtensionSet. A missing leading dot is added.
func NewExtensionSet(name string, extensions ...string) ExtensionSet {
	return ExtensionSet{name: name, extensions: normalize(extensions, true)}
}

// Name returns the set's name.
func (e ExtensionSet) Name() string { return e.name }

// Extensions returns a copy of the extensions in sorted order.
func (e ExtensionSet) Extensions() []string {
	out := make([]string, len(e.extensions))
	copy(out, e.extensions)
	return out
}

// HasSuffix reports whether s ends with one of the extensions, ignoring case.
func (e ExtensionSet) HasSuffix(s string) bool {
	s = strings.ToLower(s)
	for _, ext := range e.extensions {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}

func normalize(values []string, dotted bool) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || v == "." {
			continue
		}
		if dotted && !strings.HasPrefix(v, ".") {
			v = "." + v
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
