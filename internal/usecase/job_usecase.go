package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fadilmartias/hirematch/internal/apperror"
	"github.com/fadilmartias/hirematch/internal/logger"
	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/fadilmartias/hirematch/internal/repository"
	"github.com/fadilmartias/hirematch/internal/service"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultRecommendations = 5

// JobUsecase covers applications, the employer's ranked candidates and
// embedding-based recommendations.
type JobUsecase struct {
	store    *repository.Store
	queue    *MatchQueue
	embedder service.Embedder
	logger   *zap.Logger
}

func NewJobUsecase(store *repository.Store, queue *MatchQueue, embedder service.Embedder, log *zap.Logger) *JobUsecase {
	return &JobUsecase{
		store:    store,
		queue:    queue,
		embedder: embedder,
		logger:   logger.Named(log, "job"),
	}
}

// Apply records an application on a published job and schedules its match score.
func (uc *JobUsecase) Apply(ctx context.Context, userID, jobID uuid.UUID) (*model.Application, error) {
	if userID == uuid.Nil {
		return nil, apperror.Unauthenticated()
	}
	job, err := uc.store.Jobs.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, notFoundOr(err, "job not found", "failed to load job")
	}
	if !job.IsPublished() {
		return nil, apperror.NotFound("job not found", nil)
	}

	applied, err := uc.store.Applications.HasApplication(ctx, jobID, userID)
	if err != nil {
		return nil, apperror.Persistence("failed to check application", err)
	}
	if applied {
		return nil, apperror.Conflict("already applied to this job")
	}

	app := &model.Application{JobID: jobID, UserID: userID, Status: "submitted"}
	if err := uc.store.Applications.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("already applied to this job")
		}
		return nil, apperror.Persistence("failed to create application", err)
	}
	uc.queue.Enqueue(jobID, userID)
	return app, nil
}

// ListMatches returns the job's match scores, best first. Owner only.
func (uc *JobUsecase) ListMatches(ctx context.Context, requesterID, jobID uuid.UUID, offset, limit int) ([]model.MatchScore, int64, error) {
	if _, err := uc.ownedJob(ctx, requesterID, jobID); err != nil {
		return nil, 0, err
	}
	scores, total, err := uc.store.MatchScores.ListByJob(ctx, jobID, offset, limit)
	if err != nil {
		return nil, 0, apperror.Persistence("failed to list match scores", err)
	}
	return scores, total, nil
}

// IndexJobEmbedding computes and stores the job's embedding. Owner only.
func (uc *JobUsecase) IndexJobEmbedding(ctx context.Context, requesterID, jobID uuid.UUID) error {
	job, err := uc.ownedJob(ctx, requesterID, jobID)
	if err != nil {
		return err
	}
	if uc.embedder == nil {
		return apperror.Upstream("embedding service is not configured")
	}

	vec, err := uc.embedder.GenerateEmbedding(ctx, jobDocument(job))
	if err != nil {
		return apperror.New(apperror.KindUpstream, "", "failed to embed job", err)
	}
	if err := uc.store.Jobs.UpdateEmbedding(ctx, jobID, pgvector.NewVector(vec)); err != nil {
		return apperror.Persistence("failed to store job embedding", err)
	}
	uc.logger.Info("job embedding indexed", zap.String("job_id", jobID.String()), zap.Int("dimensions", len(vec)))
	return nil
}

// RecommendJobs ranks published jobs by distance to the candidate profile.
func (uc *JobUsecase) RecommendJobs(ctx context.Context, userID uuid.UUID, topK int) ([]model.Job, error) {
	if userID == uuid.Nil {
		return nil, apperror.Unauthenticated()
	}
	if uc.embedder == nil {
		return nil, apperror.Upstream("embedding service is not configured")
	}
	if topK <= 0 {
		topK = defaultRecommendations
	}

	profile, err := uc.store.Profiles.FindProfileByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "candidate profile not found", "failed to load candidate profile")
	}
	doc := profileDocument(profile)
	if doc == "" {
		return nil, apperror.Validation("EmptyProfile", "profile has no summary or skills to match on")
	}

	vec, err := uc.embedder.GenerateEmbedding(ctx, doc)
	if err != nil {
		return nil, apperror.New(apperror.KindUpstream, "", "failed to embed profile", err)
	}
	jobs, err := uc.store.Jobs.SearchSimilarJobs(ctx, pgvector.NewVector(vec), topK)
	if err != nil {
		return nil, apperror.Persistence("failed to search jobs", err)
	}
	return jobs, nil
}

func (uc *JobUsecase) ownedJob(ctx context.Context, requesterID, jobID uuid.UUID) (*model.Job, error) {
	if requesterID == uuid.Nil {
		return nil, apperror.Unauthenticated()
	}
	job, err := uc.store.Jobs.FindJobByID(ctx, jobID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("job not found", err)
	}
	if err != nil {
		return nil, apperror.Persistence("failed to load job", err)
	}
	if job.EmployerID != requesterID {
		return nil, apperror.Forbidden("only the job owner can do this")
	}
	return job, nil
}

func jobDocument(job *model.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", job.Title, job.Description)
	if len(job.Requirements) > 0 {
		fmt.Fprintf(&b, "Requirements: %s\n", strings.Join(job.Requirements, "; "))
	}
	if len(job.RequiredSkills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(job.RequiredSkills, ", "))
	}
	return b.String()
}

func profileDocument(p *model.CandidateProfile) string {
	var parts []string
	if s := strings.TrimSpace(p.Summary); s != "" {
		parts = append(parts, s)
	}
	skills := []string(p.Skills)
	if resume := p.ResumeData(); resume != nil {
		if len(parts) == 0 && resume.ProfessionalSummary != "" {
			parts = append(parts, resume.ProfessionalSummary)
		}
		if len(skills) == 0 {
			skills = resume.Skills
		}
		for _, e := range resume.Experience {
			parts = append(parts, e.Position+" at "+e.Company)
		}
	}
	if len(skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(skills, ", "))
	}
	return strings.Join(parts, "\n")
}
