// Package util provides low level building blocks shared by the server packages.
//
// MPSCQueue is an unbounded multi-producer queue built on a lock-free linked list:
//
//   - Push never blocks and never fails while the queue is open, so the accept loop can
//     hand off connections without waiting for a free worker
//   - A single pump goroutine moves items from the list to an unbuffered channel, which
//     any number of workers may receive from
//   - Close rejects new items but still delivers everything already queued, then closes
//     the Recv() channel
//   - Items pushed by one producer are delivered in push order. Across producers the
//     order is decided by whichever producer links its node first.
package util
