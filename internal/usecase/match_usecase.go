package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/fadilmartias/hirematch/internal/apperror"
	"github.com/fadilmartias/hirematch/internal/logger"
	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/fadilmartias/hirematch/internal/repository"
	"github.com/fadilmartias/hirematch/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MatchScorer interface {
	CalculateMatchScore(ctx context.Context, job service.JobContext, candidate service.CandidateContext) (service.Result[service.MatchResult], error)
}

type MatchUsecase struct {
	store  *repository.Store
	system *repository.Store
	scorer MatchScorer
	logger *zap.Logger
	now    func() time.Time
}

func NewMatchUsecase(store, system *repository.Store, scorer MatchScorer, log *zap.Logger) *MatchUsecase {
	return &MatchUsecase{
		store:  store,
		system: system,
		scorer: scorer,
		logger: logger.Named(log, "match"),
		now:    time.Now,
	}
}

// ScoreMatch scores a candidate against a job and upserts the result for the
// pair. It reads through the elevated store because it also runs outside any
// user request.
func (uc *MatchUsecase) ScoreMatch(ctx context.Context, jobID, userID uuid.UUID) (*model.MatchScore, error) {
	job, err := uc.system.Jobs.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, notFoundOr(err, "job not found", "failed to load job")
	}
	profile, err := uc.system.Profiles.FindProfileByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "candidate profile not found", "failed to load candidate profile")
	}
	analysis, err := uc.system.Analyses.FindByUserID(ctx, userID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		analysis = nil
	case err != nil:
		return nil, apperror.Persistence("failed to load personality analysis", err)
	}

	res, err := uc.scorer.CalculateMatchScore(ctx, service.NewJobContext(job), service.NewCandidateContext(profile, analysis))
	if err != nil {
		return nil, apperror.Internal("match scoring unavailable", err)
	}
	if !res.Success {
		uc.logger.Warn("match scoring failed",
			zap.String("job_id", jobID.String()),
			zap.String("user_id", userID.String()),
			zap.String("error", res.Error),
		)
		return nil, res.Failure()
	}

	m := res.Data
	stored, err := uc.system.MatchScores.UpsertMatchScore(ctx, &model.MatchScore{
		JobID:            jobID,
		UserID:           userID,
		OverallScore:     *m.OverallScore,
		SkillsScore:      *m.SkillsScore,
		ExperienceScore:  *m.ExperienceScore,
		CultureFitScore:  *m.CultureFitScore,
		PersonalityScore: *m.PersonalityScore,
		Explanation:      m.Explanation,
		Strengths:        m.Strengths,
		Gaps:             m.Gaps,
		CalculatedAt:     uc.now(),
	})
	if err != nil {
		return nil, apperror.Persistence("failed to store match score", err)
	}
	uc.logger.Info("match scored",
		zap.String("job_id", jobID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("overall", stored.OverallScore),
	)
	return stored, nil
}

// AuthorizeMatchRequest allows the job owner, anyone on a published job, and
// anyone who applied to the job.
func (uc *MatchUsecase) AuthorizeMatchRequest(ctx context.Context, requesterID, jobID uuid.UUID) (*model.Job, error) {
	if requesterID == uuid.Nil {
		return nil, apperror.Unauthenticated()
	}
	job, err := uc.store.Jobs.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, notFoundOr(err, "job not found", "failed to load job")
	}
	if job.EmployerID == requesterID || job.IsPublished() {
		return job, nil
	}
	applied, err := uc.store.Applications.HasApplication(ctx, jobID, requesterID)
	if err != nil {
		return nil, apperror.Persistence("failed to check application", err)
	}
	if !applied {
		return nil, apperror.Forbidden("not allowed to request match scores for this job")
	}
	return job, nil
}

// RequestMatchScore authorizes the requester and scores synchronously.
func (uc *MatchUsecase) RequestMatchScore(ctx context.Context, requesterID, jobID, userID uuid.UUID) (*model.MatchScore, error) {
	if _, err := uc.AuthorizeMatchRequest(ctx, requesterID, jobID); err != nil {
		return nil, err
	}
	return uc.ScoreMatch(ctx, jobID, userID)
}

func notFoundOr(err error, notFound, other string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(notFound, err)
	}
	return apperror.Persistence(other, err)
}
