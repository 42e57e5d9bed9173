package async

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one queued extraction: a purchase-order path waiting to be turned
// into an invoice.
type Job struct {
	Path        string
	SubmittedAt time.Time
}

// Handler processes one job. Errors are the handler's to report; the pool
// only logs them.
type Handler func(ctx context.Context, job Job) error

// Pool is a fixed-size worker pool over a buffered job channel. Enqueue
// blocks when the queue is full, which throttles producers against the
// extraction backend's throughput.
type Pool struct {
	jobs    chan Job
	handler Handler
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// NewPool starts `workers` goroutines draining the queue. The pool stops when
// ctx is cancelled or Shutdown is called.
func NewPool(ctx context.Context, workers, queueSize int, handler Handler, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers * 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		jobs:    make(chan Job, queueSize),
		handler: handler,
		logger:  logger,
	}
	for n := 0; n < workers; n++ {
		p.wg.Add(1)
		go p.worker(ctx, n)
	}
	return p
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			start := time.Now()
			if err := p.handler(ctx, job); err != nil {
				p.logger.Error("async.job.failed", "worker", id, "path", job.Path,
					"error", err, "elapsed_ms", time.Since(start).Milliseconds())
				continue
			}
			p.logger.Info("async.job.ok", "worker", id, "path", job.Path,
				"elapsed_ms", time.Since(start).Milliseconds())
		}
	}
}

// Enqueue submits a job, blocking while the queue is full. Returns the
// context error if ctx ends first.
func (p *Pool) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.jobs <- job:
		return nil
	}
}

// Shutdown stops accepting jobs and waits for in-flight work to finish.
func (p *Pool) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
}
