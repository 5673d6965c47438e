package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fuelcrawl/domaincrawl/internal/discovery"
	"github.com/fuelcrawl/domaincrawl/internal/model"
	"github.com/fuelcrawl/domaincrawl/internal/storage"
)

const (
	// DefaultPageTimeout bounds a page fetch.
	DefaultPageTimeout = 3 * time.Second

	// DefaultResourceTimeout bounds a resource download.
	DefaultResourceTimeout = 4 * time.Second
)

// Proposer receives domains linked from a crawled page. It reports whether
// the domain was admitted as new work.
type Proposer interface {
	ProposeCandidate(domain string) bool
}

// Recorder receives the outcome of every fetch. Implementations must be safe
// for concurrent use because one Engine serves all workers.
type Recorder interface {
	RecordFetch(rec *model.FetchRecord)
}

// Engine crawls a single domain depth-first. One Engine may run many
// crawls concurrently; all per-crawl state lives in the session.
type Engine struct {
	fetcher   *Fetcher
	store     *storage.Store
	resources discovery.ExtensionSet

	scheme          string
	pageTimeout     time.Duration
	resourceTimeout time.Duration
	followAssets    bool
	writeEndpoints  bool

	proposer  Proposer
	recorders []Recorder
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithScheme sets the scheme used to build a domain's start URL.
func WithScheme(scheme string) EngineOption {
	return func(e *Engine) {
		if scheme != "" {
			e.scheme = strings.ToLower(scheme)
		}
	}
}

// WithTimeouts sets the page and resource fetch timeouts.
func WithTimeouts(page, resource time.Duration) EngineOption {
	return func(e *Engine) {
		if page > 0 {
			e.pageTimeout = page
		}
		if resource > 0 {
			e.resourceTimeout = resource
		}
	}
}

// WithResourceExtensions sets the suffixes that mark a same-domain link as a
// resource.
func WithResourceExtensions(set discovery.ExtensionSet) EngineOption {
	return func(e *Engine) {
		e.resources = set
	}
}

// WithFollowAssets makes the engine follow <script src> and <link href>.
func WithFollowAssets(follow bool) EngineOption {
	return func(e *Engine) {
		e.followAssets = follow
	}
}

// WithEndpoints makes the engine write the visited URLs of each crawl to
// the domain's endpoints file.
func WithEndpoints(write bool) EngineOption {
	return func(e *Engine) {
		e.writeEndpoints = write
	}
}

// WithProposer sets where cross-domain links are proposed. Without a proposer
// cross-domain links are ignored.
func WithProposer(p Proposer) EngineOption {
	return func(e *Engine) {
		e.proposer = p
	}
}

// WithRecorder adds a fetch recorder. It may be given more than once.
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.recorders = append(e.recorders, r)
		}
	}
}

// WithEngineLogger sets the logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine that fetches with fetcher and writes to store.
func NewEngine(fetcher *Fetcher, store *storage.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher:         fetcher,
		store:           store,
		resources:       discovery.NewExtensionSet("default", discovery.DefaultResourceExtensions...),
		scheme:          "https",
		pageTimeout:     DefaultPageTimeout,
		resourceTimeout: DefaultResourceTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Crawl traverses domain starting at <scheme>://<domain>/ and saves what it
// finds below the domain's directory. Individual URL failures are counted in
// the returned stats and never stop the traversal. If ctx is cancelled the
// crawl stops before the next URL and the stats are marked Interrupted.
func (e *Engine) Crawl(ctx context.Context, domain string) *model.DomainStats {
	domain = strings.ToLower(strings.TrimSpace(domain))
	start := (&url.URL{Scheme: e.scheme, Host: domain, Path: "/"}).String()
	return e.run(ctx, domain, domain, start)
}

// CrawlSite traverses the site at startURL, saving below dir instead of the
// host name. It is used for crawling individual sites outside a run.
func (e *Engine) CrawlSite(ctx context.Context, dir, startURL string) (*model.DomainStats, error) {
	u, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("parse start url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("start url %q has no host", startURL)
	}
	if u.Scheme == "" {
		u.Scheme = e.scheme
	}
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return e.run(ctx, dir, strings.ToLower(u.Host), u.String()), nil
}

func (e *Engine) run(ctx context.Context, dir, host, start string) *model.DomainStats {
	s := &session{
		engine:     e,
		dir:        dir,
		classifier: discovery.NewClassifier(host, e.resources),
		visited:    make(map[string]bool),
		proposed:   make(map[string]bool),
		stats:      model.NewDomainStats(dir),
		logger:     e.logger.With("domain", dir),
	}

	s.logger.Info("crawling domain", "start", start)
	s.traverse(ctx, start)
	s.stats.FinishedAt = time.Now()

	if e.writeEndpoints {
		if path, err := e.store.WriteEndpoints(dir, s.stats.Endpoints); err != nil {
			s.logger.Error("failed to write endpoints", "error", err)
		} else {
			s.logger.Debug("endpoints written", "path", path, "count", len(s.stats.Endpoints))
		}
	}

	s.logger.Info("domain crawl finished",
		"pages", s.stats.Pages,
		"resources", s.stats.Resources,
		"failures", s.stats.Failures,
		"interrupted", s.stats.Interrupted,
	)
	return s.stats
}

// session is the state of a single domain crawl.
type session struct {
	engine     *Engine
	dir        string
	classifier *discovery.Classifier
	visited    map[string]bool
	proposed   map[string]bool
	stats      *model.DomainStats
	logger     *slog.Logger
}

// cursor is the position within one page's link list. A stack of cursors
// yields the same visit order as descending recursively into each page
// link before moving on to its next sibling.
type cursor struct {
	links []model.Link
	next  int
}

func (s *session) traverse(ctx context.Context, start string) {
	var stack []*cursor

	if links, ok := s.visitPage(ctx, start); ok {
		stack = append(stack, &cursor{links: links})
	}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			s.stats.Interrupted = true
			return
		}

		top := stack[len(stack)-1]
		if top.next >= len(top.links) {
			stack = stack[:len(stack)-1]
			continue
		}
		link := top.links[top.next]
		top.next++

		switch link.Kind {
		case model.LinkExternal:
			s.propose(link.Host)
		case model.LinkResource:
			s.visitResource(ctx, link.URL)
		case model.LinkPage:
			if links, ok := s.visitPage(ctx, link.URL); ok {
				stack = append(stack, &cursor{links: links})
			}
		}
	}

	if ctx.Err() != nil {
		s.stats.Interrupted = true
	}
}

// markVisited records rawURL and reports whether it was new.
func (s *session) markVisited(rawURL string) bool {
	key := normalizeURL(rawURL)
	if s.visited[key] {
		return false
	}
	s.visited[key] = true
	s.stats.Endpoints = append(s.stats.Endpoints, rawURL)
	return true
}

// visitPage fetches a page. When the response is HTML it is saved and its
// classified links are returned with ok=true. Any other content type is
// saved as a resource.
func (s *session) visitPage(ctx context.Context, pageURL string) ([]model.Link, bool) {
	if ctx.Err() != nil || !s.markVisited(pageURL) {
		return nil, false
	}

	rec := &model.FetchRecord{Domain: s.dir, URL: pageURL, Kind: model.LinkPage}
	defer s.record(rec)

	resp, err := s.engine.fetcher.Get(ctx, pageURL, s.engine.pageTimeout)
	if err != nil {
		s.fail(ctx, rec, err)
		return nil, false
	}
	defer resp.Body.Close()
	rec.StatusCode = resp.StatusCode
	rec.ContentType = resp.ContentType

	if !resp.IsHTML() {
		rec.Kind = model.LinkResource
		s.saveStream(ctx, rec, resp.Body)
		return nil, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.fail(ctx, rec, fmt.Errorf("read body: %w", err))
		return nil, false
	}

	path, err := s.engine.store.Path(s.dir, pageURL)
	if err == nil {
		err = s.engine.store.Save(path, body)
	}
	if err != nil {
		s.fail(ctx, rec, err)
	} else {
		rec.SavedPath = path
		rec.Bytes = int64(len(body))
		s.stats.Pages++
		s.stats.Bytes += rec.Bytes
	}

	parser, err := NewParser(pageURL, s.engine.followAssets)
	if err != nil {
		s.logger.Warn("failed to create parser", "url", pageURL, "error", err)
		return nil, false
	}
	result, err := parser.Parse(bytes.NewReader(body), resp.ContentType)
	if err != nil {
		s.logger.Warn("failed to parse page", "url", pageURL, "error", err)
		return nil, false
	}

	links := make([]model.Link, 0, len(result.Links))
	for _, raw := range result.Links {
		if link := s.classifier.Classify(raw); link.Kind != model.LinkIgnored {
			links = append(links, link)
		}
	}
	s.logger.Debug("page fetched", "url", pageURL, "links", len(links))
	return links, true
}

// visitResource downloads a same-domain resource without parsing it.
func (s *session) visitResource(ctx context.Context, resourceURL string) {
	if ctx.Err() != nil || !s.markVisited(resourceURL) {
		return
	}

	rec := &model.FetchRecord{Domain: s.dir, URL: resourceURL, Kind: model.LinkResource}
	defer s.record(rec)

	resp, err := s.engine.fetcher.Get(ctx, resourceURL, s.engine.resourceTimeout)
	if err != nil {
		s.fail(ctx, rec, err)
		return
	}
	defer resp.Body.Close()
	rec.StatusCode = resp.StatusCode
	rec.ContentType = resp.ContentType

	s.saveStream(ctx, rec, resp.Body)
}

func (s *session) saveStream(ctx context.Context, rec *model.FetchRecord, body io.Reader) {
	path, err := s.engine.store.Path(s.dir, rec.URL)
	if err != nil {
		s.fail(ctx, rec, err)
		return
	}
	n, err := s.engine.store.SaveStream(path, body)
	if err != nil {
		s.fail(ctx, rec, err)
		return
	}
	rec.SavedPath = path
	rec.Bytes = n
	s.stats.Resources++
	s.stats.Bytes += n
	s.logger.Debug("resource saved", "url", rec.URL, "bytes", n)
}

func (s *session) propose(host string) {
	p := s.engine.proposer
	if p == nil || host == "" || s.proposed[host] {
		return
	}
	s.proposed[host] = true
	if p.ProposeCandidate(host) {
		s.stats.Discovered = append(s.stats.Discovered, host)
		s.logger.Info("new domain admitted", "candidate", host)
	}
}

// fail records a per-URL failure. Failures caused by cancellation of the
// run are not counted.
func (s *session) fail(ctx context.Context, rec *model.FetchRecord, err error) {
	rec.Error = err.Error()
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		rec.StatusCode = statusErr.StatusCode
	}
	if ctx.Err() != nil {
		s.stats.Interrupted = true
		return
	}
	s.stats.Failures++
	s.logger.Warn("failed to process url", "url", rec.URL, "error", err)
}

func (s *session) record(rec *model.FetchRecord) {
	rec.FetchedAt = time.Now()
	for _, r := range s.engine.recorders {
		r.RecordFetch(rec)
	}
}

// normalizeURL returns the key used for the visited set: scheme and host are
// lower-cased, the fragment is dropped and an empty path becomes "/".
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
