package pool

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fuelcrawl/domaincrawl/internal/model"
	"golang.org/x/sync/errgroup"
)

// Claimer hands out domains and takes them back once crawled.
type Claimer interface {
	ClaimNext(ctx context.Context) (string, bool, error)
	Complete(domain string) error
}

// Crawler crawls one domain.
type Crawler interface {
	Crawl(ctx context.Context, domain string) *model.DomainStats
}

// Pool is a fixed-size set of crawl workers.
type Pool struct {
	claimer Claimer
	crawler Crawler
	size    int
	logger  *slog.Logger
	onDone  func(*model.DomainStats)

	mu      sync.Mutex
	results []*model.DomainStats
}

// Option configures a Pool.
type Option func(*Pool)

// WithSize sets the number of workers. Values below one are ignored.
func WithSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.size = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// WithResultHandler registers fn to be called with the stats of every
// finished domain. It is called from worker goroutines after the domain has
// been completed and must be safe for concurrent use.
func WithResultHandler(fn func(*model.DomainStats)) Option {
	return func(p *Pool) {
		p.onDone = fn
	}
}

// New creates a Pool with one worker unless WithSize says otherwise.
func New(claimer Claimer, crawler Crawler, opts ...Option) *Pool {
	p := &Pool{
		claimer: claimer,
		crawler: crawler,
		size:    1,
		results: make([]*model.DomainStats, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Run starts the workers and waits until all of them have exited. It returns
// the stats of every crawled domain sorted by name, and ctx.Err() when the run
// was cancelled.
func (p *Pool) Run(ctx context.Context) ([]*model.DomainStats, error) {
	p.logger.Info("starting workers", "workers", p.size)
	started := time.Now()

	var g errgroup.Group
	for i := range p.size {
		g.Go(func() error {
			return p.work(ctx, i+1)
		})
	}
	err := g.Wait()

	p.mu.Lock()
	results := p.results
	p.mu.Unlock()
	sort.Slice(results, func(i, j int) bool {
		return results[i].Domain < results[j].Domain
	})

	p.logger.Info("workers finished",
		"domains", len(results),
		"duration", time.Since(started).Round(time.Millisecond),
	)

	if err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func (p *Pool) work(ctx context.Context, id int) error {
	logger := p.logger.With("worker", id)

	for {
		domain, ok, err := p.claimer.ClaimNext(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.Debug("worker cancelled")
				return nil
			}
			return err
		}
		if !ok {
			logger.Debug("no more work")
			return nil
		}

		logger.Info("domain claimed", "domain", domain)
		stats := p.crawler.Crawl(ctx, domain)
		if stats == nil {
			stats = model.NewDomainStats(domain)
			stats.FinishedAt = time.Now()
		}

		if err := p.claimer.Complete(domain); err != nil {
			logger.Error("failed to complete domain", "domain", domain, "error", err)
		}

		p.mu.Lock()
		p.results = append(p.results, stats)
		p.mu.Unlock()

		if p.onDone != nil {
			p.onDone(stats)
		}
	}
}
