package usecase

import (
	"context"

	"github.com/fadilmartias/hirematch/internal/logger"
	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type matchScoreRunner interface {
	ScoreMatch(ctx context.Context, jobID, userID uuid.UUID) (*model.MatchScore, error)
}

// MatchQueue schedules match scoring in the background. Callers authorize
// before enqueueing; failures are only logged.
type MatchQueue struct {
	runner Runner
	scorer matchScoreRunner
	logger *zap.Logger
}

func NewMatchQueue(runner Runner, scorer matchScoreRunner, log *zap.Logger) *MatchQueue {
	return &MatchQueue{
		runner: runner,
		scorer: scorer,
		logger: logger.Named(log, "match_queue"),
	}
}

func (q *MatchQueue) Enqueue(jobID, userID uuid.UUID) {
	q.runner.Go("match-score", func(ctx context.Context) {
		q.run(ctx, jobID, userID)
	})
}

func (q *MatchQueue) run(ctx context.Context, jobID, userID uuid.UUID) {
	if _, err := q.scorer.ScoreMatch(ctx, jobID, userID); err != nil {
		q.logger.Error("match score job failed",
			zap.String("job_id", jobID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

// EnqueueAuthorized checks the requester against the job, then enqueues.
func (uc *MatchUsecase) EnqueueAuthorized(ctx context.Context, q *MatchQueue, requesterID, jobID, userID uuid.UUID) error {
	if _, err := uc.AuthorizeMatchRequest(ctx, requesterID, jobID); err != nil {
		return err
	}
	q.Enqueue(jobID, userID)
	return nil
}
