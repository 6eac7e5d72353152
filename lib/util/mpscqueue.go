package util

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// queueNode is a single link of the queue
type queueNode[T interface{}] struct {
	value *T
	next  atomic.Pointer[queueNode[T]]
}

// MPSCQueue is an unbounded multi-producer queue drained by one internal pump goroutine.
// The pump forwards items to an unbuffered channel, so any number of goroutines may
// receive from Recv() concurrently.
type MPSCQueue[T interface{}] struct {
	head    atomic.Pointer[queueNode[T]]
	tail    atomic.Pointer[queueNode[T]]
	out     chan *T
	pending atomic.Int64
	closed  atomic.Bool

	// pushing counts producers between their closed check and the link of their node.
	// The pump only exits once it saw the queue closed with no producer in flight.
	pushing atomic.Int64

	// mu guards the sleep/wake handshake between producers and the pump
	mu   sync.Mutex
	cond *sync.Cond
}

// NewMPSCQueue creates a new queue and starts its pump goroutine
func NewMPSCQueue[T interface{}]() *MPSCQueue[T] {
	sentinel := &queueNode[T]{}

	q := &MPSCQueue[T]{
		out: make(chan *T),
	}
	q.cond = sync.NewCond(&q.mu)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	go q.pump()

	return q
}

// Push appends an item. It returns false if the item is nil or the queue is closed.
//
// Thread-safety: This method is thread-safe and never blocks on consumers.
func (q *MPSCQueue[T]) Push(value *T) bool {
	if value == nil {
		return false
	}

	q.pushing.Add(1)
	defer q.pushing.Add(-1)
	if q.closed.Load() {
		return false
	}

	newNode := &queueNode[T]{value: value}
	q.pending.Add(1)
	var backoff uint8

	for {
		tailNode := q.tail.Load()
		next := tailNode.next.Load()

		if next == nil {
			if tailNode.next.CompareAndSwap(nil, newNode) {
				// a failed swap means another producer already advanced the tail
				q.tail.CompareAndSwap(tailNode, newNode)
				q.wake()
				return true
			}
		} else {
			q.tail.CompareAndSwap(tailNode, next)
		}

		// spin a little under contention, then yield
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// wake signals the pump while holding mu, so a signal can not slip in between
// the pump's emptiness check and its call to Wait.
func (q *MPSCQueue[T]) wake() {
	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()
}

// pump moves items from the linked list to the output channel until the queue is closed and empty
func (q *MPSCQueue[T]) pump() {
	defer close(q.out)

	for {
		drained := false

		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break
			}
			drained = true

			value := next.value
			q.head.Store(next)
			q.out <- value
			q.pending.Add(-1)
			next.value = nil
		}

		if !drained && q.closed.Load() {
			// a producer that passed its closed check before Close is still linking
			if q.pushing.Load() > 0 {
				runtime.Gosched()
				continue
			}
			if q.head.Load().next.Load() == nil {
				return
			}
			continue
		}

		if !drained {
			q.mu.Lock()
			if q.head.Load().next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// Recv returns the channel items are delivered on. It is closed once the queue is closed
// and every pending item was received.
func (q *MPSCQueue[T]) Recv() <-chan *T {
	return q.out
}

// Close rejects further pushes. Items already queued are still delivered.
func (q *MPSCQueue[T]) Close() {
	q.closed.Store(true)
	q.wake()
}

// IsClosed returns true if the queue is closed.
func (q *MPSCQueue[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len returns the number of items pushed but not yet received.
// The value is a snapshot and may be stale by the time it is read.
func (q *MPSCQueue[T]) Len() int {
	return int(q.pending.Load())
}
