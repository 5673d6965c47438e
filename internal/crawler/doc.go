// Package crawler fetches and saves the content of a single domain.
//
// # Components
//
//   - Fetcher: issues GET requests with a fixed User-Agent and
//     Accept-Language profile and a per-request timeout
//   - Parser: decodes a page and extracts <a href> and <img src> links
//     (plus <script src> and <link href> when asset following is enabled)
//   - Engine: depth-first traversal of one domain
//
// # Traversal
//
// The Engine starts at <scheme>://<domain>/ and keeps an explicit stack of
// per-page link cursors. Each same-domain page link is descended into before
// the next sibling link is considered, so the visit order is the one a
// recursive crawler would produce. Every URL is marked visited before it is
// fetched and is never fetched twice within a session.
//
// Links are classified by the discovery package:
//   - same-domain page: fetched, saved and parsed
//   - same-domain resource: downloaded and saved, never parsed
//   - cross-domain: offered to the Proposer, never fetched
//
// A failed URL (timeout, transport error, non-2xx status, save error) is
// counted and logged; the traversal continues with the next link.
//
// # Usage
//
//	fetcher := crawler.NewFetcher(http.DefaultClient)
//	engine := crawler.NewEngine(fetcher, storage.New("files"),
//		crawler.WithProposer(stateStore))
//	stats := engine.Crawl(ctx, "example.com")
package crawler
