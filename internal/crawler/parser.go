package crawler

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const (
	// pageSelector matches the elements followed on every page.
	pageSelector = "a[href], img[src]"

	// assetSelector additionally matches scripts and linked stylesheets/icons.
	assetSelector = "a[href], img[src], script[src], link[href]"
)

// ignoredSchemes are link prefixes that never lead to a fetchable document.
var ignoredSchemes = []string{"javascript:", "mailto:", "tel:", "data:"}

// Parser extracts candidate links from an HTML page.
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL

	// followAssets adds <script src> and <link href> to the extracted links.
	followAssets bool
}

// ParseResult contains the information extracted from an HTML page.
type ParseResult struct {
	// Title is the page title from <title> tag.
	Title string

	// Links contains the absolute URLs found on the page, in document order.
	// Duplicates are kept; the engine's visited set removes them.
	Links []string
}

// NewParser creates a new HTML parser with the given base URL.
func NewParser(baseURL string, followAssets bool) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Parser{baseURL: u, followAssets: followAssets}, nil
}

// Parse decodes content according to contentType (falling back to sniffing
// the document) and returns its links resolved against the base URL.
func (p *Parser) Parse(content io.Reader, contentType string) (*ParseResult, error) {
	decoded, err := charset.NewReader(content, contentType)
	if err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}

	root, err := html.Parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	result := &ParseResult{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Links: make([]string, 0),
	}

	selector := pageSelector
	if p.followAssets {
		selector = assetSelector
	}

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		var ref string
		switch goquery.NodeName(s) {
		case "a", "link":
			ref, _ = s.Attr("href")
		case "img", "script":
			ref, _ = s.Attr("src")
		}
		if resolved := p.resolveURL(ref); resolved != "" {
			result.Links = append(result.Links, resolved)
		}
	})

	return result, nil
}

// resolveURL resolves a relative URL against the base URL. Empty references,
// bare fragments and non-fetchable schemes resolve to "".
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}

	lower := strings.ToLower(href)
	for _, scheme := range ignoredSchemes {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.baseURL.ResolveReference(u).String()
}
