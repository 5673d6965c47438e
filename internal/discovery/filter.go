package discovery

import "strings"

// Registry answers whether a domain is already part of the work set in any
// state (pending, processing or scraped).
type Registry interface {
	Known(domain string) bool
}

// KnownFunc adapts a plain function to the Registry interface.
type KnownFunc func(domain string) bool

// Known calls f(domain).
func (f KnownFunc) Known(domain string) bool { return f(domain) }

// Filter admits foreign domains into the work set.
type Filter struct {
	keywords KeywordSet
}

// NewFilter returns a Filter that admits domains matching keywords.
func NewFilter(keywords KeywordSet) *Filter {
	return &Filter{keywords: keywords}
}

// Keywords returns the keyword set the filter matches against.
func (f *Filter) Keywords() KeywordSet { return f.keywords }

// Admit reports whether name should become a new pending domain: it must
// contain at least one keyword and must not be known to reg. Admit has no side
// effects; callers holding the state lock perform the insertion.
func (f *Filter) Admit(name string, reg Registry) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	if _, ok := f.keywords.Match(name); !ok {
		return false
	}
	if reg != nil && reg.Known(name) {
		return false
	}
	return true
}
