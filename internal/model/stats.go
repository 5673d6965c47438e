package model

import (
	"sort"
	"time"
)

// DomainStats holds the counters of one domain crawl session.
type DomainStats struct {
	// Domain is the crawled domain.
	Domain string `json:"domain"`

	// Pages is the number of hypertext pages fetched and saved.
	Pages int `json:"pages"`

	// Resources is the number of non-hypertext files saved.
	Resources int `json:"resources"`

	// Failures is the number of URLs abandoned because of fetch or save errors.
	Failures int `json:"failures"`

	// Bytes is the total number of body bytes written to disk.
	Bytes int64 `json:"bytes"`

	// Discovered lists the domains admitted to the work set from this crawl.
	Discovered []string `json:"discovered,omitempty"`

	// Endpoints lists every visited URL in visit order.
	Endpoints []string `json:"-"`

	// StartedAt and FinishedAt bound the crawl session.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Interrupted is set when the run was cancelled before the traversal finished.
	Interrupted bool `json:"interrupted,omitempty"`
}

// NewDomainStats returns empty stats for domain.
func NewDomainStats(domain string) *DomainStats {
	return &DomainStats{
		Domain:     domain,
		Discovered: make([]string, 0),
		Endpoints:  make([]string, 0),
		StartedAt:  time.Now(),
	}
}

// Visited returns the number of URLs visited in the session.
func (s *DomainStats) Visited() int {
	return len(s.Endpoints)
}

// Duration returns how long the crawl took.
func (s *DomainStats) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// RunSummary aggregates the stats of every domain crawled in one run.
type RunSummary struct {
	// RunID identifies the run in the history database.
	RunID string `json:"run_id"`

	// Domains holds per-domain stats sorted by domain name.
	Domains []*DomainStats `json:"domains"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Pending lists domains still pending when the run stopped.
	// It is only non-empty after an interrupted run.
	Pending []string `json:"pending,omitempty"`
}

// NewRunSummary creates a summary for the given run ID.
func NewRunSummary(runID string) *RunSummary {
	return &RunSummary{
		RunID:     runID,
		Domains:   make([]*DomainStats, 0),
		StartedAt: time.Now(),
	}
}

// Add appends domain stats and keeps the list sorted by name.
func (r *RunSummary) Add(stats *DomainStats) {
	r.Domains = append(r.Domains, stats)
	sort.Slice(r.Domains, func(i, j int) bool {
		return r.Domains[i].Domain < r.Domains[j].Domain
	})
}

// Totals sums the per-domain counters.
func (r *RunSummary) Totals() DomainStats {
	var total DomainStats
	for _, d := range r.Domains {
		total.Pages += d.Pages
		total.Resources += d.Resources
		total.Failures += d.Failures
		total.Bytes += d.Bytes
		total.Discovered = append(total.Discovered, d.Discovered...)
	}
	return total
}

// Duration returns the wall time of the run.
func (r *RunSummary) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
