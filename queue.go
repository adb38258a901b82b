package marquee

import "sync"

const defaultQueueCap = 256

// updateQueue is the only lock in the core. Producers append under mu; the
// render goroutine swaps the whole batch out under mu and applies it with the
// lock released, so a producer never waits on render work.
type updateQueue struct {
	mu      sync.Mutex
	pending []update
	spare   []update
	closed  bool
}

func newUpdateQueue() *updateQueue {
	return &updateQueue{
		pending: make([]update, 0, defaultQueueCap),
		spare:   make([]update, 0, defaultQueueCap),
	}
}

// enqueue appends u. Returns false once the queue is closed.
func (q *updateQueue) enqueue(u update) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.pending = append(q.pending, u)
	return true
}

// swap takes every pending record in arrival order and leaves an empty
// buffer behind for producers.
func (q *updateQueue) swap() []update {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.pending
	q.pending = q.spare[:0]
	q.spare = nil
	return batch
}

// recycle hands an applied batch back for reuse. Records are cleared so
// buffers and callbacks they hold can be collected.
func (q *updateQueue) recycle(batch []update) {
	clear(batch)
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.spare == nil {
		q.spare = batch[:0]
	}
}

// close rejects further records and drops those still pending.
func (q *updateQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	clear(q.pending)
	q.pending = q.pending[:0]
}

// len returns the number of pending records.
func (q *updateQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
