package discovery

import (
	"net/url"
	"strings"

	"github.com/fuelcrawl/domaincrawl/internal/model"
)

// Classifier sorts absolute URLs found on a domain's pages into pages,
// resources and external links.
type Classifier struct {
	domain    string
	resources ExtensionSet
}

// NewClassifier returns a Classifier for the given domain (host[:port]).
func NewClassifier(domain string, resources ExtensionSet) *Classifier {
	return &Classifier{
		domain:    strings.ToLower(domain),
		resources: resources,
	}
}

// Domain returns the domain the classifier compares against.
func (c *Classifier) Domain() string { return c.domain }

// Classify parses rawURL and returns its classification. The fragment is
// removed from the returned URL. Anything that is not an absolute http(s)
// URL with a host is LinkIgnored.
func (c *Classifier) Classify(rawURL string) model.Link {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return model.Link{URL: rawURL, Kind: model.LinkIgnored}
	}
	u.Fragment = ""
	u.RawFragment = ""

	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return model.Link{URL: u.String(), Kind: model.LinkIgnored}
	}

	host := strings.ToLower(u.Host)
	link := model.Link{URL: u.String(), Host: host}

	switch {
	case host != c.domain:
		link.Kind = model.LinkExternal
	case c.resources.HasSuffix(link.URL):
		link.Kind = model.LinkResource
	default:
		link.Kind = model.LinkPage
	}
	return link
}
