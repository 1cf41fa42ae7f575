package repository

import (
	"context"

	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatchScoreRepository struct {
	db *gorm.DB
}

func NewMatchScoreRepository(db *gorm.DB) *MatchScoreRepository {
	return &MatchScoreRepository{db}
}

// UpsertMatchScore replaces the score of the (job, user) pair and returns the
// stored row.
func (r *MatchScoreRepository) UpsertMatchScore(ctx context.Context, score *model.MatchScore) (*model.MatchScore, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "job_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"overall_score", "skills_score", "experience_score", "culture_fit_score",
			"personality_score", "explanation", "strengths", "gaps", "calculated_at", "updated_at",
		}),
	}).Create(score).Error
	if err != nil {
		return nil, err
	}
	return r.FindMatchScore(ctx, score.JobID, score.UserID)
}

func (r *MatchScoreRepository) FindMatchScore(ctx context.Context, jobID, userID uuid.UUID) (*model.MatchScore, error) {
	var m model.MatchScore
	err := r.db.WithContext(ctx).First(&m, "job_id = ? AND user_id = ?", jobID, userID).Error
	return &m, err
}

// ListByJob returns one page of a job's scores, best first, and the total count.
func (r *MatchScoreRepository) ListByJob(ctx context.Context, jobID uuid.UUID, offset, limit int) ([]model.MatchScore, int64, error) {
	var (
		scores []model.MatchScore
		total  int64
	)
	q := r.db.WithContext(ctx).Model(&model.MatchScore{}).Where("job_id = ?", jobID).Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("overall_score DESC").Offset(offset).Limit(limit).Find(&scores).Error
	return scores, total, err
}
