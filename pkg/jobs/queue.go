package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueStopped is reported by handles whose job never ran because the queue shut down.
var ErrQueueStopped = errors.New("queue stopped")

// Job represents a queued background task.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	// Timeout bounds each job's execution. Zero disables the deadline.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Handle lets the submitter join or cancel a job after it was enqueued.
type Handle struct {
	job    Job
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// ID returns the job identifier.
func (h *Handle) ID() string { return h.job.ID }

// Done is closed once the job has finished (or was dropped).
func (h *Handle) Done() <-chan struct{} { return h.done }

// Cancel requests cancellation of the job's context.
func (h *Handle) Cancel() { h.cancel() }

// Wait blocks until the job finishes or ctx expires.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the handler error once the job is done.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *Handle) finish(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
	h.cancel()
	close(h.done)
}

// Queue is a lightweight in-memory job dispatcher backed by goroutines.
type Queue struct {
	name    string
	handler Handler

	workers    int
	bufferSize int
	timeout    time.Duration
	logger     *zap.Logger

	jobs    chan *Handle
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		bufferSize: cfg.BufferSize,
		timeout:    cfg.Timeout,
		logger:     cfg.Logger,
		jobs:       make(chan *Handle, cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i + 1)
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels workers, waits for them to exit and releases handles of jobs that never ran.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()

	for {
		select {
		case h := <-q.jobs:
			h.finish(ErrQueueStopped)
		default:
			q.logger.Sugar().Infow("queue stopped", "queue", q.name)
			return
		}
	}
}

// Enqueue pushes a job onto the queue and returns its handle.
func (q *Queue) Enqueue(job Job) (*Handle, error) {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return nil, fmt.Errorf("queue %s not started", q.name)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	jobCtx, cancel := context.WithCancel(ctx)
	h := &Handle{job: job, ctx: jobCtx, cancel: cancel, done: make(chan struct{})}

	select {
	case <-ctx.Done():
		cancel()
		return nil, fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.jobs <- h:
		return h, nil
	default:
		cancel()
		return nil, fmt.Errorf("queue %s full", q.name)
	}
}

func (q *Queue) worker(workerID int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case h := <-q.jobs:
			err := q.run(h)
			if err != nil {
				q.logger.Sugar().Warnw("job failed", "queue", q.name, "worker", workerID, "job_id", h.job.ID, "type", h.job.Type, "error", err)
			}
			h.finish(err)
		}
	}
}

func (q *Queue) run(h *Handle) (err error) {
	ctx := h.ctx
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job %s panicked: %v", h.job.ID, p)
		}
	}()
	return q.handler(ctx, h.job)
}
