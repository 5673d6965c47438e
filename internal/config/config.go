package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"

	"github.com/fuelcrawl/domaincrawl/internal/discovery"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "domaincrawl"

	// DefaultOutputDir is where domain content and the domain lists are written.
	DefaultOutputDir = "files"

	// DefaultScheme is used to build the start URL of a domain.
	DefaultScheme = "https"

	// DefaultPageTimeout bounds each page fetch.
	DefaultPageTimeout = 3 * time.Second

	// DefaultResourceTimeout bounds each resource download.
	DefaultResourceTimeout = 4 * time.Second

	// DefaultUserAgent is the browser-like User-Agent sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0 Safari/537.36"

	// DefaultMaxBodySize limits how much of a single response is read.
	DefaultMaxBodySize = 32 * 1024 * 1024 // 32MB
)

// DefaultSeeds is the built-in list of sites a crawl starts from.
var DefaultSeeds = []string{
	"https://www.spatco.com",
	"https://www.jfpetrogroup.com",
	"https://www.guardianfueltech.com",
	"https://www.mecoatlanta.com",
	"https://www.mckinneypetroleum.com",
	"https://www.barberequipco.com",
	"https://www.bkequip.com",
	"https://www.larsonco.com",
	"https://www.rstenstrom.com",
	"https://www.adamstankandlift.com",
	"https://www.wildcopes.com",
	"https://www.bakertilly.com",
}

// DefaultAcceptLanguage lists the preferred languages, most preferred first.
var DefaultAcceptLanguage = []string{"es-ES", "es"}

// Config holds all configuration options for domaincrawl.
// It is populated from defaults, the optional config file and CLI flags,
// in that order, and passed down explicitly.
type Config struct {
	// Seeds are the sites a crawl starts from. Entries may be URLs or bare
	// host names; only the host is used.
	Seeds []string

	// Keywords admit discovered domains whose names contain one of them.
	Keywords []string

	// ResourceExtensions mark same-domain links that are downloaded but not parsed.
	ResourceExtensions []string

	// OutputDir is the root for domain content and the persisted domain lists.
	OutputDir string

	// Scheme is used to build each domain's start URL ("https" or "http").
	Scheme string

	// PageTimeout bounds a page fetch, ResourceTimeout a resource download.
	PageTimeout     time.Duration
	ResourceTimeout time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// AcceptLanguage lists BCP 47 language tags, most preferred first.
	AcceptLanguage []string

	// Workers is the number of crawl workers. Zero means one per seed.
	Workers int

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// FollowAssets adds <script src> and <link href> to the followed links.
	FollowAssets bool

	// WriteEndpoints writes endpoints.txt for every crawled domain.
	WriteEndpoints bool

	// Verbose enables debug logging; JSONLog switches to JSON log lines.
	Verbose bool
	JSONLog bool

	// MarkdownReport prints the run summary as Markdown, JSONReport as JSON.
	MarkdownReport bool
	JSONReport     bool

	// ReportFile is where the summary is written instead of stdout.
	ReportFile string

	// MetricsAddr, when set, serves Prometheus metrics on this address.
	MetricsAddr string

	// DBDir is the directory holding the history database.
	DBDir string

	// SaveToDB records runs and fetches in the history database.
	SaveToDB bool

	// ConfigFilePath is an explicit configuration file location.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Seeds:              append([]string(nil), DefaultSeeds...),
		Keywords:           append([]string(nil), discovery.DefaultKeywords...),
		ResourceExtensions: append([]string(nil), discovery.DefaultResourceExtensions...),
		OutputDir:          DefaultOutputDir,
		Scheme:             DefaultScheme,
		PageTimeout:        DefaultPageTimeout,
		ResourceTimeout:    DefaultResourceTimeout,
		UserAgent:          DefaultUserAgent,
		AcceptLanguage:     append([]string(nil), DefaultAcceptLanguage...),
		MaxBodySize:        DefaultMaxBodySize,
		DBDir:              XDGDataDir(),
		SaveToDB:           true,
	}
}

// XDGDataDir returns the XDG data directory for domaincrawl.
// On Linux: ~/.local/share/domaincrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for domaincrawl.
// On Linux: ~/.config/domaincrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	if _, err := c.SeedDomains(); err != nil {
		return err
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return ErrEmptyOutputDir
	}
	if c.Scheme != "http" && c.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrInvalidScheme, c.Scheme)
	}
	if c.PageTimeout <= 0 || c.ResourceTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Workers < 0 {
		return ErrInvalidWorkers
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if _, err := c.AcceptLanguageHeader(); err != nil {
		return err
	}
	if c.MarkdownReport && c.JSONReport {
		return ErrConflictingReportFormats
	}
	if c.SaveToDB && strings.TrimSpace(c.DBDir) == "" {
		return ErrEmptyDBDir
	}
	return nil
}

// SeedDomains returns the lower-cased host of every seed, without duplicates,
// in the order given.
func (c *Config) SeedDomains() ([]string, error) {
	seen := make(map[string]bool, len(c.Seeds))
	domains := make([]string, 0, len(c.Seeds))
	for _, seed := range c.Seeds {
		host, err := SeedHost(seed)
		if err != nil {
			return nil, err
		}
		if !seen[host] {
			seen[host] = true
			domains = append(domains, host)
		}
	}
	return domains, nil
}

// SeedHost extracts the host from a seed given as a URL or a bare host name.
func SeedHost(seed string) (string, error) {
	s := strings.TrimSpace(seed)
	if s == "" {
		return "", fmt.Errorf("%w: empty seed", ErrInvalidSeed)
	}
	if !strings.Contains(s, "://") {
		s = "//" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeed, seed)
	}
	return strings.ToLower(u.Host), nil
}

// WorkerCount returns the number of crawl workers for a run over n seed
// domains: Workers when set, otherwise n (at least one).
func (c *Config) WorkerCount(n int) int {
	if c.Workers > 0 {
		return c.Workers
	}
	if n < 1 {
		return 1
	}
	return n
}

// AcceptLanguageHeader builds the Accept-Language header value from
// AcceptLanguage. The first tag carries no weight; each following tag gets a
// weight 0.1 lower than the previous, down to 0.1.
func (c *Config) AcceptLanguageHeader() (string, error) {
	if len(c.AcceptLanguage) == 0 {
		return "", ErrInvalidAcceptLanguage
	}
	parts := make([]string, 0, len(c.AcceptLanguage))
	for i, raw := range c.AcceptLanguage {
		tag, err := language.Parse(strings.TrimSpace(raw))
		if err != nil {
			return "", fmt.Errorf("%w: %q: %w", ErrInvalidAcceptLanguage, raw, err)
		}
		if i == 0 {
			parts = append(parts, tag.String())
			continue
		}
		q := max(10-i, 1)
		parts = append(parts, fmt.Sprintf("%s;q=0.%d", tag.String(), q))
	}
	return strings.Join(parts, ","), nil
}

// KeywordSet returns the configured discovery keywords.
func (c *Config) KeywordSet() discovery.KeywordSet {
	return discovery.NewKeywordSet("config", c.Keywords...)
}

// ExtensionSet returns the configured resource extensions.
func (c *Config) ExtensionSet() discovery.ExtensionSet {
	return discovery.NewExtensionSet("config", c.ResourceExtensions...)
}
