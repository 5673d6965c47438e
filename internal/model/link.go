package model

// LinkKind classifies an absolute URL discovered on a page relative to the
// domain being crawled.
type LinkKind int

const (
	// LinkIgnored is a link the crawler does not act on (mailto:, javascript:, unparsable).
	LinkIgnored LinkKind = iota

	// LinkPage is a same-domain hypertext page that is descended into.
	LinkPage

	// LinkResource is a same-domain asset that is downloaded but never parsed.
	LinkResource

	// LinkExternal is a link to another domain, a candidate for discovery.
	LinkExternal
)

// String returns the name of the link kind.
func (k LinkKind) String() string {
	switch k {
	case LinkPage:
		return "page"
	case LinkResource:
		return "resource"
	case LinkExternal:
		return "external"
	default:
		return "ignored"
	}
}

// Link is a discovered, resolved URL together with its classification.
type Link struct {
	// URL is the absolute URL with the fragment removed.
	URL string

	// Host is the host (including port, if any) of URL, lower-cased.
	Host string

	// Kind is the classification of the link.
	Kind LinkKind
}
