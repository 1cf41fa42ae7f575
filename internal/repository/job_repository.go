package repository

import (
	"context"

	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

// SearchSimilarJobs returns the published jobs closest to embedding. Requires
// the pgvector extension.
func (r *JobRepository) SearchSimilarJobs(ctx context.Context, embedding pgvector.Vector, topK int) ([]model.Job, error) {
	var jobs []model.Job

	err := r.db.WithContext(ctx).Raw(`
        SELECT *
        FROM jobs
        WHERE status = ? AND embedding IS NOT NULL
        ORDER BY embedding <-> ?
        LIMIT ?
    `, model.JobStatusPublished, embedding, topK).Scan(&jobs).Error

	return jobs, err
}

func (r *JobRepository) CreateCompany(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *JobRepository) CreateJob(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) UpdateEmbedding(ctx context.Context, jobID uuid.UUID, embedding pgvector.Vector) error {
	return r.db.WithContext(ctx).Model(&model.Job{}).Where("id = ?", jobID).Update("embedding", embedding).Error
}

// FindJobByID loads a job together with its company.
func (r *JobRepository) FindJobByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var j model.Job
	err := r.db.WithContext(ctx).Preload("Company").First(&j, "id = ?", id).Error
	return &j, err
}
