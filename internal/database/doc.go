// Package database provides the SQLite history of domaincrawl runs.
//
// The history database records:
//   - one row per run, identified by a UUID, with its totals
//   - one row per fetched URL (page or resource), failed fetches included
//   - one row per completed domain with its counters and discovered domains
//
// The domain lists that drive resumption live in plain text files managed by
// the state package; the database is an audit trail and never decides what
// gets crawled.
//
// SQLite is used through modernc.org/sqlite, a CGO-free driver, with WAL
// enabled and a single open connection.
package database
