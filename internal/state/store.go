package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fuelcrawl/domaincrawl/internal/discovery"
	"github.com/fuelcrawl/domaincrawl/internal/model"
)

var (
	// ErrNotProcessing is returned by Complete for a domain no worker holds.
	ErrNotProcessing = errors.New("domain is not processing")

	// ErrAlreadySeeded is returned when Seed is called twice on one Store.
	ErrAlreadySeeded = errors.New("store already seeded")
)

// Observer receives state changes. Implementations must be safe for
// concurrent use and must not call back into the Store.
type Observer interface {
	// ObserveStates reports the size of each state after a mutation.
	ObserveStates(pending, processing, scraped int)

	// ObserveDiscovery reports a proposed candidate and whether it was admitted.
	ObserveDiscovery(domain string, admitted bool)

	// ObservePersistError reports a failed list rewrite.
	ObservePersistError()
}

// Counts is a point-in-time view of the state sizes.
type Counts struct {
	Pending    int
	Processing int
	Scraped    int
	Queued     int
}

// Store is the process-wide record of domain states.
type Store struct {
	mu   sync.Mutex
	cond *sync.Cond

	pending    map[string]bool
	processing map[string]bool
	scraped    map[string]bool

	queue  *Queue
	filter *discovery.Filter

	pendingFile *ListFile
	scrapedFile *ListFile

	seeded        bool
	persistErrors int

	logger   *slog.Logger
	observer Observer
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence failures and transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithObserver registers an observer for state changes.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// Open loads the persisted lists from dir and returns a Store using filter
// to admit discovered domains.
func Open(dir string, filter *discovery.Filter, opts ...Option) (*Store, error) {
	if filter == nil {
		return nil, errors.New("state: nil discovery filter")
	}

	s := &Store{
		processing:  make(map[string]bool),
		queue:       NewQueue(),
		filter:      filter,
		pendingFile: NewListFile(filepath.Join(dir, PendingFile)),
		scrapedFile: NewListFile(filepath.Join(dir, ScrapedFile)),
	}
	s.cond = sync.NewCond(&s.mu)

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	var err error
	if s.pending, err = s.pendingFile.Load(); err != nil {
		return nil, fmt.Errorf("load pending domains: %w", err)
	}
	if s.scraped, err = s.scrapedFile.Load(); err != nil {
		return nil, fmt.Errorf("load scraped domains: %w", err)
	}

	// A domain listed in both files was claimed, then re-discovered by a
	// run whose pending list was written later; scraped wins.
	for d := range s.pending {
		if s.scraped[d] {
			delete(s.pending, d)
		}
	}

	return s, nil
}

// Seed registers the seed domains as pending (unless already pending or
// scraped), persists the pending list and enqueues every pending domain,
// including those carried over from a previous run. A failed rewrite of the
// pending list is logged and counted like any other persistence failure; the
// only error is ErrAlreadySeeded.
func (s *Store) Seed(seeds []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seeded {
		return ErrAlreadySeeded
	}
	s.seeded = true

	for _, seed := range seeds {
		d := normalizeDomain(seed)
		if d == "" || s.scraped[d] || s.pending[d] {
			continue
		}
		s.pending[d] = true
	}

	_ = s.persistPendingLocked()
	for _, d := range sortedKeys(s.pending) {
		s.queue.Push(d)
	}
	s.observeLocked()
	s.cond.Broadcast()
	return nil
}

// ClaimNext hands the next ready domain to the caller and marks it
// processing. While the queue is empty but another domain is still
// processing it blocks, because that crawl may still discover new work.
// It returns ok=false once the queue is empty and nothing is processing,
// and ctx.Err() if ctx is cancelled while waiting.
func (s *Store) ClaimNext(ctx context.Context) (string, bool, error) {
	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		if d, ok := s.queue.Pop(); ok {
			if !s.pending[d] {
				continue
			}
			delete(s.pending, d)
			s.processing[d] = true

			_ = s.persistPendingLocked()
			_ = s.persistScrapedLocked()
			s.observeLocked()

			s.logger.Debug("domain claimed", "domain", d)
			return d, true, nil
		}

		if len(s.processing) == 0 {
			s.cond.Broadcast()
			return "", false, nil
		}

		s.cond.Wait()
	}
}

// Complete moves domain from processing to scraped.
func (s *Store) Complete(domain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := normalizeDomain(domain)
	if !s.processing[d] {
		return fmt.Errorf("%w: %s", ErrNotProcessing, d)
	}
	delete(s.processing, d)
	s.scraped[d] = true

	err := s.persistScrapedLocked()
	s.observeLocked()
	s.cond.Broadcast()

	s.logger.Debug("domain completed", "domain", d)
	return err
}

// ProposeCandidate offers a domain seen during a crawl. If the discovery
// filter admits it, the domain becomes pending, is persisted and enqueued.
func (s *Store) ProposeCandidate(domain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := normalizeDomain(domain)
	admitted := s.filter.Admit(d, discovery.KnownFunc(s.knownLocked))
	if s.observer != nil {
		s.observer.ObserveDiscovery(d, admitted)
	}
	if !admitted {
		return false
	}

	s.pending[d] = true
	_ = s.persistPendingLocked()
	s.queue.Push(d)
	s.observeLocked()
	s.cond.Broadcast()

	s.logger.Info("domain discovered", "domain", d)
	return true
}

// Known reports whether domain is pending, processing or scraped.
func (s *Store) Known(domain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knownLocked(normalizeDomain(domain))
}

// State returns the current state of domain.
func (s *Store) State(domain string) model.DomainState {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := normalizeDomain(domain)
	switch {
	case s.processing[d]:
		return model.StateProcessing
	case s.pending[d]:
		return model.StatePending
	case s.scraped[d]:
		return model.StateScraped
	default:
		return model.StateUnknown
	}
}

// Counts returns the current state sizes.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countsLocked()
}

// Pending returns the pending domains, sorted.
func (s *Store) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.pending)
}

// Processing returns the processing domains, sorted.
func (s *Store) Processing() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.processing)
}

// Scraped returns the scraped domains, sorted.
func (s *Store) Scraped() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.scraped)
}

// PersistErrors returns how many list rewrites have failed.
func (s *Store) PersistErrors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErrors
}

func (s *Store) knownLocked(d string) bool {
	return s.pending[d] || s.processing[d] || s.scraped[d]
}

func (s *Store) countsLocked() Counts {
	return Counts{
		Pending:    len(s.pending),
		Processing: len(s.processing),
		Scraped:    len(s.scraped),
		Queued:     s.queue.Len(),
	}
}

func (s *Store) observeLocked() {
	if s.observer == nil {
		return
	}
	c := s.countsLocked()
	s.observer.ObserveStates(c.Pending, c.Processing, c.Scraped)
}

func (s *Store) persistPendingLocked() error {
	return s.persistLocked(s.pendingFile, s.pending)
}

// persistScrapedLocked writes scraped plus processing: an in-flight domain is
// already recorded as scraped on disk.
func (s *Store) persistScrapedLocked() error {
	return s.persistLocked(s.scrapedFile, union(s.scraped, s.processing))
}

func (s *Store) persistLocked(f *ListFile, set map[string]bool) error {
	if err := f.Save(set); err != nil {
		s.persistErrors++
		if s.observer != nil {
			s.observer.ObservePersistError()
		}
		s.logger.Error("failed to persist domain list", "path", f.Path(), "error", err)
		return err
	}
	return nil
}

func normalizeDomain(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}
