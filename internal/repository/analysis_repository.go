package repository

import (
	"context"
	"time"

	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var completedColumns = []string{
	"status", "processed_at", "error_message",
	"problem_solving_style", "initiative_level", "work_preference",
	"communication_style", "leadership_potential",
	"motivational_factors", "growth_areas",
	"analytical_score", "creative_score", "leadership_score", "teamwork_score",
	"trait_scores", "confidence_score", "updated_at",
}

type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db}
}

func (r *AnalysisRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.PersonalityAnalysis, error) {
	var a model.PersonalityAnalysis
	err := r.db.WithContext(ctx).First(&a, "user_id = ?", userID).Error
	return &a, err
}

// UpsertQueued creates or resets the user's analysis to queued. Previous
// results stay in place until the next completion overwrites them.
func (r *AnalysisRepository) UpsertQueued(ctx context.Context, userID uuid.UUID, queuedAt time.Time) error {
	a := &model.PersonalityAnalysis{
		UserID:   userID,
		Status:   model.AnalysisQueued,
		QueuedAt: queuedAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "queued_at", "processed_at", "error_message", "updated_at"}),
	}).Create(a).Error
}

func (r *AnalysisRepository) MarkProcessing(ctx context.Context, userID uuid.UUID) error {
	return r.update(ctx, userID, map[string]any{
		"status":        model.AnalysisProcessing,
		"error_message": nil,
		"updated_at":    time.Now(),
	})
}

func (r *AnalysisRepository) MarkFailed(ctx context.Context, userID uuid.UUID, message string, at time.Time) error {
	return r.update(ctx, userID, map[string]any{
		"status":        model.AnalysisFailed,
		"error_message": message,
		"processed_at":  at,
		"updated_at":    at,
	})
}

// SaveCompleted upserts the full result with status completed.
func (r *AnalysisRepository) SaveCompleted(ctx context.Context, analysis *model.PersonalityAnalysis) error {
	analysis.Status = model.AnalysisCompleted
	analysis.ErrorMessage = nil
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(completedColumns),
	}).Create(analysis).Error
}

func (r *AnalysisRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PersonalityAnalysis{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *AnalysisRepository) update(ctx context.Context, userID uuid.UUID, values map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.PersonalityAnalysis{}).Where("user_id = ?", userID).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
