package model

import "fmt"

// DomainState is the lifecycle state of a domain within a run.
// A domain only ever moves forward: Pending -> Processing -> Scraped.
type DomainState int

const (
	// StateUnknown is the zero value for a domain the store has never seen.
	StateUnknown DomainState = iota

	// StatePending marks a domain that is waiting in the work queue.
	StatePending

	// StateProcessing marks a domain currently claimed by a worker.
	// This state only exists in memory for the duration of a run.
	StateProcessing

	// StateScraped marks a domain whose crawl has finished.
	StateScraped
)

// String returns the lower-case name of the state.
func (s DomainState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateProcessing:
		return "processing"
	case StateScraped:
		return "scraped"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s DomainState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *DomainState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pending":
		*s = StatePending
	case "processing":
		*s = StateProcessing
	case "scraped":
		*s = StateScraped
	case "unknown", "":
		*s = StateUnknown
	default:
		return fmt.Errorf("unknown domain state %q", string(text))
	}
	return nil
}

// CanTransition reports whether moving from s to next is a legal transition.
func (s DomainState) CanTransition(next DomainState) bool {
	switch s {
	case StateUnknown:
		return next == StatePending
	case StatePending:
		return next == StateProcessing
	case StateProcessing:
		return next == StateScraped
	default:
		return false
	}
}
