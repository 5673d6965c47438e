// Package storage maps crawled URLs to files on disk and writes their bodies.
//
// Every domain gets its own directory below the output root. The file name is
// derived from the URL path alone, so the mapping is deterministic and a
// re-crawl overwrites the previous copy in place.
package storage
