package repository

import (
	"context"

	"github.com/fadilmartias/hirematch/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db}
}

// EnsureQuestions inserts or refreshes the canonical questionnaire.
func (r *QuestionRepository) EnsureQuestions(ctx context.Context, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"category", "text", "position"}),
	}).Create(&questions).Error
}

// FindQuestionsByIDs returns the known questions among ids, keyed by id.
func (r *QuestionRepository) FindQuestionsByIDs(ctx context.Context, ids []string) (map[string]model.Question, error) {
	out := make(map[string]model.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var questions []model.Question
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	for _, q := range questions {
		out[q.ID] = q
	}
	return out, nil
}

func (r *QuestionRepository) ListQuestions(ctx context.Context) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.WithContext(ctx).Order("position ASC").Find(&questions).Error
	return questions, err
}
