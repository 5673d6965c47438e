package model

import "time"

// FetchRecord is the outcome of fetching a single URL during a domain crawl.
// Failed fetches are recorded too, with Error set.
type FetchRecord struct {
	// Domain is the domain being crawled when the URL was fetched.
	Domain string `json:"domain"`

	// URL is the fetched URL.
	URL string `json:"url"`

	// Kind is LinkPage or LinkResource.
	Kind LinkKind `json:"kind"`

	// StatusCode is the HTTP status, zero when the request never completed.
	StatusCode int `json:"status_code"`

	// ContentType is the response Content-Type header.
	ContentType string `json:"content_type,omitempty"`

	// Bytes is the number of body bytes written to disk.
	Bytes int64 `json:"bytes"`

	// SavedPath is where the body was written, empty if nothing was saved.
	SavedPath string `json:"saved_path,omitempty"`

	// Error holds the failure message for this URL, if any.
	Error string `json:"error,omitempty"`

	// FetchedAt is when the fetch finished.
	FetchedAt time.Time `json:"fetched_at"`
}

// OK reports whether the fetch succeeded and the body was saved.
func (r *FetchRecord) OK() bool {
	return r.Error == ""
}
