package form

import "sync"

// asyncResult is the settled outcome of one async validator run.
type asyncResult struct {
	control    *Control
	validator  string
	generation uint64
	passed     bool
	err        error
}

// inbox buffers async results until the next Commit and counts the validators
// still running. notify holds at most one wake-up token regardless of how many
// results arrive.
type inbox struct {
	mu       sync.Mutex
	items    []asyncResult
	inflight int
	notify   chan struct{}
}

// begin records a validator about to run.
func (b *inbox) begin() {
	b.mu.Lock()
	b.inflight++
	b.mu.Unlock()
}

// push delivers the result of a validator started with begin.
func (b *inbox) push(r asyncResult) {
	b.mu.Lock()
	b.items = append(b.items, r)
	b.inflight--
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// drain returns the buffered results in arrival order and empties the inbox.
func (b *inbox) drain() []asyncResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.items
	b.items = nil
	return items
}

// idle reports whether no validator is running and no result is buffered.
func (b *inbox) idle() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inflight == 0 && len(b.items) == 0
}

// PendingResults returns the number of async results waiting for a Commit.
func (t *Tree) PendingResults() int {
	t.inbox.mu.Lock()
	defer t.inbox.mu.Unlock()
	return len(t.inbox.items)
}
