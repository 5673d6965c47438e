// Package model defines the core data structures shared by the crawl packages.
//
// This package contains the following main types:
//   - DomainState: Lifecycle state of a domain (pending, processing, scraped)
//   - LinkKind: Classification of a discovered link
//   - FetchRecord: Outcome of a single URL fetch
//   - DomainStats: Per-domain crawl counters
//   - RunSummary: Aggregated result of a whole run
//
// The types live in their own package so that the crawler, state, database and
// report packages can share them without import cycles.
package model
