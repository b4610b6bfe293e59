package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/saladoop/shift-report-backend/pkg/metrics"
)

const (
	DEFAULT_DISPATCH_WORKERS     = 4
	DEFAULT_DISPATCH_QUEUE_SIZE  = 100
	DEFAULT_DISPATCH_JOB_TIMEOUT = 30 * time.Second
)

type Job func(ctx context.Context)

type dispatchItem struct {
	name string
	fn   Job
}

// Dispatcher runs notification jobs on a fixed set of workers, detached from request lifecycles.
type Dispatcher struct {
	queue      chan dispatchItem
	wg         sync.WaitGroup
	mu         sync.RWMutex
	closed     bool
	ctx        context.Context
	cancel     context.CancelFunc
	jobTimeout time.Duration
}

func NewDispatcher(workers int, queueSize int, jobTimeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = DEFAULT_DISPATCH_WORKERS
	}
	if queueSize <= 0 {
		queueSize = DEFAULT_DISPATCH_QUEUE_SIZE
	}
	if jobTimeout <= 0 {
		jobTimeout = DEFAULT_DISPATCH_JOB_TIMEOUT
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		queue:      make(chan dispatchItem, queueSize),
		ctx:        ctx,
		cancel:     cancel,
		jobTimeout: jobTimeout,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for item := range d.queue {
		d.run(item)
	}
}

func (d *Dispatcher) run(item dispatchItem) {
	ctx, cancel := context.WithTimeout(d.ctx, d.jobTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("notification job panicked", slog.String("job", item.name), slog.String("error", fmt.Sprint(r)))
		}
	}()
	item.fn(ctx)
}

// Submit enqueues a job without blocking. It returns false if the queue is full or stopped.
func (d *Dispatcher) Submit(name string, fn Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		slog.Warn("dispatcher stopped, job dropped", slog.String("job", name))
		metrics.DispatchQueueDropped.Inc()
		return false
	}
	select {
	case d.queue <- dispatchItem{name: name, fn: fn}:
		return true
	default:
		slog.Warn("dispatch queue full, job dropped", slog.String("job", name))
		metrics.DispatchQueueDropped.Inc()
		return false
	}
}

// Stop rejects new jobs and waits for queued ones. If ctx ends first, running jobs are cancelled.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
