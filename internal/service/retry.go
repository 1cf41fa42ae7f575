package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/hirematch/internal/apperror"
	"github.com/fadilmartias/hirematch/internal/logger"
	"go.uber.org/zap"
)

const DefaultMaxAttempts = 3

// Retrier retries failed results with exponential backoff. Go errors returned
// by the operation are never retried.
type Retrier struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewRetrier(maxAttempts int, baseDelay, maxDelay time.Duration, log *zap.Logger) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Retrier{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		logger:      logger.Named(log, "retrier"),
		sleep:       sleepContext,
	}
}

// Backoff returns the delay after the given failed attempt (1-based):
// BaseDelay doubled per attempt, capped at MaxDelay.
func (r *Retrier) Backoff(attempt int) time.Duration {
	if attempt < 1 || r.BaseDelay <= 0 {
		return 0
	}
	shift := attempt - 1
	if shift > 20 {
		shift = 20
	}
	delay := r.BaseDelay << shift
	if r.MaxDelay > 0 && delay > r.MaxDelay {
		delay = r.MaxDelay
	}
	return delay
}

// Retry runs op until it returns a successful result or the attempts run out.
// A non-nil error from op is returned at once.
func Retry[T any](ctx context.Context, r *Retrier, op func(ctx context.Context) (Result[T], error)) (Result[T], error) {
	if r == nil {
		r = NewRetrier(DefaultMaxAttempts, 0, 0, nil)
	}
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	log := r.logger
	if log == nil {
		log = zap.NewNop()
	}
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var last Result[T]
	attempts := 0
	for attempts < maxAttempts {
		attempts++
		res, err := op(ctx)
		if err != nil {
			return res, err
		}
		if res.Success {
			return res, nil
		}
		last = res

		if attempts == maxAttempts {
			break
		}
		delay := r.Backoff(attempts)
		log.Warn("ai call failed, retrying",
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("delay", delay),
			zap.String("error", res.Error),
		)
		if err := sleep(ctx, delay); err != nil {
			last.Error = fmt.Sprintf("%s (%v)", last.Error, err)
			break
		}
	}

	msg := fmt.Sprintf("Failed after %d retries: %s", attempts, last.Error)
	return Result[T]{Error: msg, Err: apperror.New(apperror.KindUpstream, "", msg, last.Err)}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
