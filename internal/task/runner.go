package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// RunnerConfig sizes the worker pool and its queue.
type RunnerConfig struct {
	// WorkerCount is the number of concurrent workers. Values below 1 mean 1.
	WorkerCount int

	// QueueSize is the number of tasks that may wait for a worker.
	QueueSize int

	// TaskTimeout bounds a single Execute call. Zero means no limit.
	TaskTimeout time.Duration
}

// DefaultRunnerConfig returns the configuration used when none is given.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
		TaskTimeout: 30 * time.Second,
	}
}

// Runner executes submitted tasks on a pool of worker goroutines.
type Runner struct {
	config RunnerConfig
	tasks  chan Task
	logger *slog.Logger

	errHandler func(task Task, err error)

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

var _ Submitter = (*Runner)(nil)

// NewRunner creates a Runner. Call Start before submitting tasks.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "task_runner"))

	if config.WorkerCount < 1 {
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", config.WorkerCount),
			slog.Int("default_count", 1))
		config.WorkerCount = 1
	}
	if config.QueueSize < 0 {
		config.QueueSize = 0
	}

	r := &Runner{
		config: config,
		tasks:  make(chan Task, config.QueueSize),
		logger: logger,
	}
	r.errHandler = func(task Task, err error) {
		r.logger.Error("task execution failed",
			slog.String("task_id", task.ID()),
			slog.String("task_type", task.Type()),
			slog.String("error", err.Error()))
	}
	return r
}

// SetErrorHandler replaces the handler called when a task returns an error.
// It must be called before Start.
func (r *Runner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Start launches the workers. Calling it twice has no effect.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopped {
		return
	}
	r.started = true

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.logger.Info("task runner started",
		slog.Int("worker_count", r.config.WorkerCount),
		slog.Int("queue_size", r.config.QueueSize))
}

// Submit queues task without blocking. It fails with ErrQueueFull when every
// slot is taken.
func (r *Runner) Submit(task Task) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch {
	case r.stopped:
		return ErrRunnerStopped
	case !r.started:
		return ErrRunnerNotReady
	}

	select {
	case r.tasks <- task:
		r.logger.Debug("task enqueued",
			slog.String("task_id", task.ID()),
			slog.String("task_type", task.Type()),
			slog.Int("queue_len", len(r.tasks)))
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(r.tasks))
	}
}

// Stop rejects new tasks, lets the workers finish everything already queued
// and waits for them to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	close(r.tasks)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Info("task runner stopped")
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()
	for task := range r.tasks {
		r.process(task, id)
	}
}

func (r *Runner) process(task Task, workerID int) {
	log := r.logger.With(
		slog.String("task_id", task.ID()),
		slog.String("task_type", task.Type()),
		slog.Int("worker_id", workerID))

	ctx := context.Background()
	if r.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.TaskTimeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			r.errHandler(task, fmt.Errorf("task panicked: %v", p))
		}
	}()

	start := time.Now()
	if err := task.Execute(ctx); err != nil {
		r.errHandler(task, err)
		return
	}
	log.Debug("task completed", slog.Duration("duration", time.Since(start)))
}
