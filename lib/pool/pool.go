package pool

import (
	"github.com/ValentinKolb/dictd/lib/util"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
)

var Logger = logger.GetLogger("pool")

// Metric names registered in the pool's registry
const (
	MetricSubmitted = "pool.jobs.submitted"
	MetricCompleted = "pool.jobs.completed"
	MetricPanicked  = "pool.jobs.panicked"
	MetricBusy      = "pool.slots.busy"
	MetricQueued    = "pool.jobs.queued"
	MetricJobTime   = "pool.jobs.duration"
)

// JobFunc runs a single job inside a worker slot
type JobFunc[T interface{}] func(job T)

// WorkerPool runs jobs on a fixed number of slots. Submissions go through an
// unbounded queue, so Submit never waits for a slot to become free.
type WorkerPool[T interface{}] struct {
	slots   int
	run     JobFunc[T]
	queue   *util.MPSCQueue[T]
	workers sync.WaitGroup

	registry  gometrics.Registry
	submitted gometrics.Counter
	completed gometrics.Counter
	panicked  gometrics.Counter
	busy      gometrics.Counter
	jobTime   gometrics.Timer
}

// Stats is a point in time snapshot of the pool's counters
type Stats struct {
	Slots     int
	Submitted int64
	Completed int64
	Panicked  int64
	Busy      int64
	Queued    int64
	MeanJob   time.Duration
}

// NewWorkerPool creates a pool with the given number of slots and starts its workers.
// A slot count below one selects runtime.NumCPU().
//
// Usage:
//
//	p := pool.NewWorkerPool(0, func(conn net.Conn) {
//		handle(conn)
//	})
//	p.Submit(conn)
func NewWorkerPool[T interface{}](slots int, run JobFunc[T]) *WorkerPool[T] {
	if slots < 1 {
		slots = runtime.NumCPU()
	}

	registry := gometrics.NewRegistry()
	p := &WorkerPool[T]{
		slots:     slots,
		run:       run,
		queue:     util.NewMPSCQueue[T](),
		registry:  registry,
		submitted: gometrics.GetOrRegisterCounter(MetricSubmitted, registry),
		completed: gometrics.GetOrRegisterCounter(MetricCompleted, registry),
		panicked:  gometrics.GetOrRegisterCounter(MetricPanicked, registry),
		busy:      gometrics.GetOrRegisterCounter(MetricBusy, registry),
		jobTime:   gometrics.GetOrRegisterTimer(MetricJobTime, registry),
	}

	queued := gometrics.NewFunctionalGauge(func() int64 { return int64(p.queue.Len()) })
	_ = registry.Register(MetricQueued, queued)

	p.workers.Add(slots)
	for i := 0; i < slots; i++ {
		go p.worker(i)
	}

	Logger.Infof("Started worker pool with %d slots", slots)
	return p
}

// Submit queues a job. It returns false only after Close was called.
//
// Thread-safety: This method is thread-safe.
func (p *WorkerPool[T]) Submit(job T) bool {
	p.submitted.Inc(1)
	if !p.queue.Push(&job) {
		p.submitted.Dec(1)
		return false
	}
	return true
}

// Close stops accepting jobs. Jobs already queued still run.
func (p *WorkerPool[T]) Close() {
	p.queue.Close()
}

// Wait blocks until every worker has exited, which happens after Close once the queue is drained.
func (p *WorkerPool[T]) Wait() {
	p.workers.Wait()
}

// Slots returns the number of worker slots
func (p *WorkerPool[T]) Slots() int {
	return p.slots
}

// Registry exposes the underlying metrics registry
func (p *WorkerPool[T]) Registry() gometrics.Registry {
	return p.registry
}

// Stats returns a snapshot of the pool counters
func (p *WorkerPool[T]) Stats() Stats {
	return Stats{
		Slots:     p.slots,
		Submitted: p.submitted.Count(),
		Completed: p.completed.Count(),
		Panicked:  p.panicked.Count(),
		Busy:      p.busy.Count(),
		Queued:    int64(p.queue.Len()),
		MeanJob:   time.Duration(p.jobTime.Mean()),
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// worker pulls jobs until the queue is closed and drained
func (p *WorkerPool[T]) worker(slot int) {
	defer p.workers.Done()

	for job := range p.queue.Recv() {
		p.execute(slot, *job)
	}
	Logger.Debugf("Worker slot %d stopped", slot)
}

// execute runs one job; a panic ends the job but not the slot
func (p *WorkerPool[T]) execute(slot int, job T) {
	start := time.Now()
	p.busy.Inc(1)

	defer func() {
		if r := recover(); r != nil {
			p.panicked.Inc(1)
			Logger.Errorf("Job in slot %d panicked: %v\n%s", slot, r, debug.Stack())
		}
		p.busy.Dec(1)
		p.jobTime.UpdateSince(start)
		p.completed.Inc(1)
	}()

	p.run(job)
}
