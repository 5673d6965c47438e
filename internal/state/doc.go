// Package state owns the lifecycle of every domain in a run.
//
// The Store is the single place where pending, processing and scraped domains
// live. It exposes only atomic operations (Seed, ClaimNext, Complete,
// ProposeCandidate) and guards them, the Queue of ready domains and the on-disk
// lists with one mutex. The lists are rewritten in full on every change:
//
//	files/scraped_domains.txt
//	files/pending_domains.txt
//
// Processing domains are never written as such. When a domain is claimed it is
// dropped from the pending list and the scraped list is rewritten as scraped
// plus everything currently processing, so a crash mid-crawl leaves the domain
// recorded as scraped on resume.
package state
