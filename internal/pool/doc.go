// Package pool runs a fixed number of workers that claim domains from the
// state store, crawl them and mark them complete.
//
// Workers stop when the store reports quiescence (no queued domain and no
// domain in processing) or when the run context is cancelled. A domain that
// was claimed is always completed, even after cancellation, so nothing is
// left in processing when Run returns.
package pool
