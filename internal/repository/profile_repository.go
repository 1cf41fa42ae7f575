package repository

import (
	"context"

	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db}
}

func (r *ProfileRepository) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*model.CandidateProfile, error) {
	var p model.CandidateProfile
	err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	return &p, err
}

// UpsertProfile inserts the profile or overwrites the given columns of the
// existing profile of the same user.
func (r *ProfileRepository) UpsertProfile(ctx context.Context, profile *model.CandidateProfile, columns ...string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	}).Create(profile).Error
}

// SetAnalysisFlags updates the questionnaire completion flags of a profile.
// Users without a profile are ignored.
func (r *ProfileRepository) SetAnalysisFlags(ctx context.Context, userID uuid.UUID, flags map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.CandidateProfile{}).Where("user_id = ?", userID).Updates(flags).Error
}
