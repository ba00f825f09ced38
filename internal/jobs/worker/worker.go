package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/agilecoach-backend/internal/observability"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

var (
	ErrQueueFull = errors.New("worker queue is full")
	ErrStopped   = errors.New("worker pool is stopped")
)

// Task is one unit of background work. Run gets a context that is
// cancelled when the task times out or the pool is forced down.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Config struct {
	// Concurrency is the number of worker goroutines. Defaults to 4.
	Concurrency int
	// QueueSize bounds pending tasks. Defaults to 64 per worker.
	QueueSize int
	// TaskTimeout caps a single run. Zero means no cap.
	TaskTimeout time.Duration
}

// Pool runs submitted tasks on a fixed set of goroutines. Submissions never
// block: a full queue is reported to the caller.
type Pool struct {
	log     *logger.Logger
	metrics *observability.Metrics
	cfg     Config

	queue chan Task

	mu     sync.RWMutex
	closed bool

	startOnce sync.Once
	runCtx    context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewPool(baseLog *logger.Logger, metrics *observability.Metrics, cfg Config) *Pool {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 4
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64 * cfg.Concurrency
	}
	return &Pool{
		log:     baseLog.With("component", "WorkerPool"),
		metrics: metrics,
		cfg:     cfg,
		queue:   make(chan Task, cfg.QueueSize),
	}
}

// Start launches the workers. Later calls are no-ops. Cancelling ctx stops
// the workers and cancels running tasks.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.runCtx, p.cancel = context.WithCancel(ctx)
		p.log.Info("Starting worker pool", "concurrency", p.cfg.Concurrency, "queue_size", p.cfg.QueueSize)
		for i := 0; i < p.cfg.Concurrency; i++ {
			p.wg.Add(1)
			go p.runLoop(i + 1)
		}
	})
}

// Submit enqueues t without waiting.
func (p *Pool) Submit(t Task) error {
	if t.Run == nil {
		return fmt.Errorf("task %q has no run func", t.Name)
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrStopped
	}
	select {
	case p.queue <- t:
		p.metrics.SetWorkerQueueDepth(len(p.queue))
		return nil
	default:
		p.log.Warn("Worker queue full, dropping task", "task", t.Name)
		p.metrics.ObserveWorkerTask(t.Name, "dropped", 0)
		return ErrQueueFull
	}
}

// Shutdown stops accepting work and waits for queued tasks to finish. When
// ctx ends first, running tasks are cancelled and ctx.Err() is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	// Start after Shutdown must not launch workers.
	p.startOnce.Do(func() {})
	if p.cancel == nil {
		if n := len(p.queue); n > 0 {
			p.log.Warn("Worker pool shut down before start", "dropped", n)
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}

func (p *Pool) runLoop(workerID int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.runCtx.Done():
			p.log.Debug("Worker loop stopped", "worker_id", workerID)
			return
		case t, ok := <-p.queue:
			if !ok {
				return
			}
			p.metrics.SetWorkerQueueDepth(len(p.queue))
			p.run(workerID, t)
		}
	}
}

func (p *Pool) run(workerID int, t Task) {
	ctx := p.runCtx
	cancel := func() {}
	if p.cfg.TaskTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, p.cfg.TaskTimeout)
	}
	defer cancel()

	start := time.Now()
	status := "success"
	defer func() {
		if r := recover(); r != nil {
			status = "panic"
			p.log.Error("Worker task panic", "worker_id", workerID, "task", t.Name, "panic", r)
		}
		p.metrics.ObserveWorkerTask(t.Name, status, time.Since(start))
	}()

	if err := t.Run(ctx); err != nil {
		status = "failure"
		p.log.Warn("Worker task failed", "worker_id", workerID, "task", t.Name, "error", err)
	}
}
