package repository

import (
	"context"

	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResponseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{db}
}

func (r *ResponseRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.PersonalityResponse{}).Error
}

func (r *ResponseRepository) CreateResponses(ctx context.Context, responses []model.PersonalityResponse) error {
	if len(responses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&responses).Error
}

func (r *ResponseRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]model.PersonalityResponse, error) {
	var responses []model.PersonalityResponse
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("position ASC").Find(&responses).Error
	return responses, err
}
