package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/fadilmartias/hirematch/internal/config"
	"github.com/fadilmartias/hirematch/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Runner executes background tasks. The caller never waits for the task nor
// sees its outcome; tasks report through the store and the log.
type Runner interface {
	Go(name string, fn func(ctx context.Context))
}

// NewRunner selects a runner for the configured execution mode.
func NewRunner(ctx context.Context, cfg *config.PipelineConfig, log *zap.Logger) Runner {
	switch cfg.ExecutionMode {
	case config.ExecutionInline:
		return NewInlineRunner(log)
	case config.ExecutionDisabled:
		return NewDisabledRunner(log)
	case config.ExecutionDeferred:
	default:
		logger.Named(log, "runner").Warn("unknown execution mode, using deferred", zap.String("mode", cfg.ExecutionMode))
	}
	return NewDeferredRunner(ctx, cfg.BackgroundConcurrency, cfg.TaskTimeout, log)
}

// DeferredRunner runs tasks on goroutines, at most limit at a time.
type DeferredRunner struct {
	ctx     context.Context
	sem     *semaphore.Weighted
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewDeferredRunner(ctx context.Context, limit int, timeout time.Duration, log *zap.Logger) *DeferredRunner {
	if limit <= 0 {
		limit = 1
	}
	return &DeferredRunner{
		ctx:     ctx,
		sem:     semaphore.NewWeighted(int64(limit)),
		timeout: timeout,
		logger:  logger.Named(log, "runner"),
	}
}

func (r *DeferredRunner) Go(name string, fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.sem.Acquire(r.ctx, 1); err != nil {
			r.logger.Warn("background task dropped", zap.String("task", name), zap.Error(err))
			return
		}
		defer r.sem.Release(1)

		ctx := r.ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		runSafely(ctx, r.logger, name, fn)
	}()
}

// Wait blocks until every started task has returned or ctx is done.
func (r *DeferredRunner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InlineRunner runs tasks synchronously on the calling goroutine.
type InlineRunner struct {
	logger *zap.Logger
}

func NewInlineRunner(log *zap.Logger) *InlineRunner {
	return &InlineRunner{logger: logger.Named(log, "runner")}
}

func (r *InlineRunner) Go(name string, fn func(ctx context.Context)) {
	runSafely(context.Background(), r.logger, name, fn)
}

// DisabledRunner drops every task. Used by test environments.
type DisabledRunner struct {
	logger *zap.Logger
}

func NewDisabledRunner(log *zap.Logger) *DisabledRunner {
	return &DisabledRunner{logger: logger.Named(log, "runner")}
}

func (r *DisabledRunner) Go(name string, _ func(ctx context.Context)) {
	r.logger.Debug("background execution disabled, task skipped", zap.String("task", name))
}

func runSafely(ctx context.Context, log *zap.Logger, name string, fn func(ctx context.Context)) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("background task panic", zap.String("task", name), zap.Any("panic", rec), zap.Stack("stack"))
		}
	}()
	fn(ctx)
}
