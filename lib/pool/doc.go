// Package pool implements the bounded worker pool that runs connection handlers.
//
// A WorkerPool owns a fixed number of slots, each one a goroutine that takes jobs off a
// shared util.MPSCQueue. The queue is unbounded, which decouples the rate at which jobs are
// submitted from the rate at which they can run: Submit returns immediately and a job simply
// waits in the queue until a slot frees up. No job is ever dropped because the pool is busy.
//
// Failure isolation: a job that panics is recovered at the slot boundary, logged and counted
// in the "pool.jobs.panicked" metric. The slot then continues with the next job.
//
// Metrics: every pool carries its own go-metrics registry (see Registry) with job counters,
// the number of busy slots, the queue length and a job duration timer.
//
// Lifetime: the server never shuts its pool down. Close and Wait exist for tests and
// embedding code that needs to drain the pool.
package pool
