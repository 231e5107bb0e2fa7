package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/polymer/internal/adapters/mq/queue"
	"github.com/okian/polymer/pkg/dispatch"
	"github.com/okian/polymer/pkg/logger"
	"github.com/okian/polymer/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker runs jobs read off a queue.
type Worker interface {
	// Run starts the worker loop until the queue closes or ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after it drains the jobs already queued.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue Queue
	name  string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop. Every job the worker receives is run, and on
// cancel or shutdown the jobs still buffered are run before returning.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			w.drain(jobs)
			return
		case <-w.shutdown:
			w.drain(jobs)
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(j)
		}
	}
}

// Shutdown signals the worker and waits for it to finish.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) drain(jobs <-chan queue.Job) {
	for {
		select {
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(j)
		default:
			return
		}
	}
}

// process runs one job. A panicking job is logged and does not stop the worker.
func (w *InMemoryWorker) process(j queue.Job) {
	ctx := j.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(ctx, "job panicked",
				logger.String("job_id", j.ID),
				logger.Any("panic", r),
			)
		}
	}()

	w.logger.Debug(ctx, "running job",
		logger.String("job_id", j.ID),
		logger.Duration("waited", time.Since(j.EnqueuedAt)),
	)
	j.Run(ctx)
}

// Pool manages multiple workers over one queue and implements
// dispatch.Executor.
type Pool struct {
	workers []*InMemoryWorker
	queue   *queue.InMemoryQueue

	shutdown     chan struct{}
	shutdownOnce sync.Once
	stopped      chan struct{}
	stopOnce     sync.Once
	started      atomic.Bool

	logger  logger.Logger
	metrics *metrics.Manager
}

var _ dispatch.Executor = (*Pool)(nil)

// NewPool creates a pool of workerCount workers reading q. A count below one
// uses a multiple of the CPU count.
func NewPool(workerCount int, q *queue.InMemoryQueue, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		stopped:  make(chan struct{}),
		logger:   logger.Nop(),
		metrics:  metrics.Default(),
	}
	for _, opt := range opts {
		opt(pool)
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			q,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(pool.logger),
		)
	}
	return pool
}

// Start starts all workers in the pool. When ctx ends the pool stops as if
// Shutdown was called: the queue closes and later submissions are refused.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.metrics.UpdateWorkersActive(len(p.workers))
	go p.startMetricsUpdater(ctx)
	go p.stopOnCancel(ctx)
}

// Done is closed once the pool has stopped and every accepted job has run.
func (p *Pool) Done() <-chan struct{} { return p.stopped }

// stopOnCancel closes the queue after ctx ends, then runs the jobs accepted
// between the workers exiting and the close.
func (p *Pool) stopOnCancel(ctx context.Context) {
	select {
	case <-p.shutdown:
		return
	case <-ctx.Done():
	}
	if err := p.queue.Close(); err != nil {
		p.logger.Error(context.Background(), "error closing queue", logger.Error(err))
	}
	for _, w := range p.workers {
		<-w.done
	}
	p.runRemaining()
	p.metrics.UpdateWorkersActive(0)
	p.markStopped()
}

// runRemaining runs what is left in a closed queue on the calling goroutine.
func (p *Pool) runRemaining() {
	if len(p.workers) == 0 {
		return
	}
	p.workers[0].drain(p.queue.Dequeue(context.Background()))
}

func (p *Pool) markStopped() {
	p.stopOnce.Do(func() { close(p.stopped) })
}

// Submit enqueues job. Refusals wrap dispatch.ErrRejected together with
// queue.ErrClosed after shutdown or queue.ErrFull when the queue has no room.
func (p *Pool) Submit(ctx context.Context, job func(context.Context)) error {
	j := queue.Job{
		ID:         uuid.NewString(),
		Ctx:        ctx,
		Run:        job,
		EnqueuedAt: time.Now(),
	}
	if p.queue.Enqueue(ctx, j) {
		return nil
	}
	p.metrics.RecordQueueRejected()
	if p.queue.IsClosed() {
		return fmt.Errorf("%w: %w", dispatch.ErrRejected, queue.ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", dispatch.ErrRejected, err)
	}
	return fmt.Errorf("%w: %w: capacity %d", dispatch.ErrRejected, queue.ErrFull, p.queue.Cap())
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.queue.Len(ctx)
		}
	}
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
	p.shutdownOnce.Do(func() { close(p.shutdown) })

	if !p.started.Load() {
		p.runRemaining()
		p.markStopped()
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	p.metrics.UpdateWorkersActive(0)
	if timedOut {
		return fmt.Errorf("pool shutdown timed out: %w", shutdownCtx.Err())
	}
	p.runRemaining()
	p.markStopped()
	return nil
}
