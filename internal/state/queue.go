package state

import "sync"

// Queue is a FIFO of domain names ready to be claimed. It is safe for
// concurrent use on its own; the Store additionally holds its own lock while
// touching it so emptiness checks combine atomically with the processing set.
type Queue struct {
	mu    sync.Mutex
	items []string
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{items: make([]string, 0)}
}

// Push appends domain to the back of the queue.
func (q *Queue) Push(domain string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, domain)
}

// Pop removes and returns the front of the queue.
func (q *Queue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", false
	}
	d := q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	return d, true
}

// Len returns the number of queued domains.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot returns a copy of the queued domains in order.
func (q *Queue) Snapshot() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.items))
	copy(out, q.items)
	return out
}
