package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of background work. Attempt starts at 1.
type Task func(ctx context.Context, attempt int) error

// RunnerConfig configures retry behaviour.
type RunnerConfig struct {
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Runner executes a single task on one goroutine. A trigger that arrives
// while a run is already pending is merged into it, so bursts of triggers
// produce at most one extra run.
type Runner struct {
	name       string
	task       Task
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	pending chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewRunner builds a runner. MaxRetries below zero disables retries; zero
// means the default of 3.
func NewRunner(name string, task Task, cfg RunnerConfig) *Runner {
	switch {
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = 3
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Runner{
		name:       name,
		task:       task,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		pending:    make(chan struct{}, 1),
	}
}

// Start launches the worker. Calling it twice is a no-op.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.loop()
	r.started = true
	r.logger.Sugar().Infow("runner started", "runner", r.name)
}

// Stop cancels the worker and waits for the current attempt to return.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.started = false
	r.mu.Unlock()
	r.wg.Wait()
	r.logger.Sugar().Infow("runner stopped", "runner", r.name)
}

// Trigger requests a run. It reports false when the runner is stopped or a
// run is already waiting.
func (r *Runner) Trigger() bool {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return false
	}
	select {
	case r.pending <- struct{}{}:
		return true
	default:
		return false
	}
}

func (r *Runner) loop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.pending:
			r.run()
		}
	}
}

func (r *Runner) run() {
	for attempt := 1; ; attempt++ {
		err := r.task(r.ctx, attempt)
		if err == nil {
			return
		}
		if attempt > r.maxRetries {
			r.logger.Sugar().Errorw("task exceeded retries", "runner", r.name, "attempt", attempt, "error", err)
			return
		}
		r.logger.Sugar().Warnw("task failed, retrying", "runner", r.name, "attempt", attempt, "error", err)

		timer := time.NewTimer(r.retryDelay)
		select {
		case <-r.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
