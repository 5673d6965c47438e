// Package discovery decides which links matter to a crawl.
//
// It holds the two configurable sets that steer the crawler:
//   - KeywordSet: substrings a foreign domain name must contain to be admitted
//     as new work (see Filter).
//   - ExtensionSet: URL suffixes that mark a same-domain link as a resource to
//     download rather than a page to descend into (see Classifier).
//
// Both sets are plain data supplied by configuration, so the crawl core can
// be tested with any business vocabulary.
package discovery
