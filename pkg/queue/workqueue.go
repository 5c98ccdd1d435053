// Package queue implements the bounded multi-producer/multi-consumer
// batched queue of candidate edge pairs that LevelDriver fans out to
// ContractingWorkers.
package queue

import (
	"sync"

	"multich/pkg/graph"
)

// WorkQueue is a bounded MPMC queue of graph.EdgePair. Ordering is FIFO
// per producer; no total order across producers is required. Closure is
// observable to receivers only after all previously-sent items have been
// delivered — a plain closed Go channel gives us exactly that guarantee.
type WorkQueue struct {
	ch       chan graph.EdgePair
	closeOne sync.Once
}

// NewWorkQueue creates a queue with the given item capacity. Capacity
// should be sized to a few batches so producers rarely block; LevelDriver
// uses THREAD_COUNT*30 as its batch size and a queue capacity of a few
// batches' worth.
func NewWorkQueue(capacity int) *WorkQueue {
	return &WorkQueue{ch: make(chan graph.EdgePair, capacity)}
}

// Send pushes a batch, blocking while the queue is full. The main
// goroutine is the sole producer per level; Send after Close panics on
// the closed channel.
func (q *WorkQueue) Send(batch []graph.EdgePair) {
	for _, p := range batch {
		q.ch <- p
	}
}

// Close is idempotent. Subsequent ReceiveSome calls drain any remaining
// items, then return 0.
func (q *WorkQueue) Close() {
	q.closeOne.Do(func() { close(q.ch) })
}

// ReceiveSome drains up to max items into a freshly allocated slice and
// returns it along with the count. It blocks only while the queue is
// both empty and open; once at least one item is available (or the queue
// is closed) it returns without waiting for more, draining whatever is
// already buffered up to max. Returns a zero count only when the queue
// is empty and closed.
func (q *WorkQueue) ReceiveSome(max int) ([]graph.EdgePair, int) {
	first, ok := <-q.ch
	if !ok {
		return nil, 0
	}

	dst := make([]graph.EdgePair, 0, max)
	dst = append(dst, first)

	for len(dst) < max {
		select {
		case p, ok := <-q.ch:
			if !ok {
				return dst, len(dst)
			}
			dst = append(dst, p)
		default:
			return dst, len(dst)
		}
	}
	return dst, len(dst)
}
