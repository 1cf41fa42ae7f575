package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	JobStatusDraft     = "draft"
	JobStatusPublished = "published"
	JobStatusClosed    = "closed"
)

// EmbeddingDimensions matches gemini-embedding-001 output.
const EmbeddingDimensions = 3072

type Company struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID            uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
	Name               string    `gorm:"type:varchar(255)" json:"name"`
	Description        string    `gorm:"type:text" json:"description"`
	CultureDescription string    `gorm:"type:text" json:"culture_description"`
	Industry           string    `gorm:"type:varchar(255)" json:"industry"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

type Job struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID        *uuid.UUID                  `gorm:"type:uuid;index" json:"company_id"`
	Company          *Company                    `json:"company,omitempty"`
	EmployerID       uuid.UUID                   `gorm:"type:uuid;index" json:"employer_id"`
	Title            string                      `json:"title"`
	Description      string                      `gorm:"type:text" json:"description"`
	Requirements     datatypes.JSONSlice[string] `json:"requirements"`
	Responsibilities datatypes.JSONSlice[string] `json:"responsibilities"`
	SeniorityLevel   string                      `gorm:"type:varchar(50)" json:"seniority_level"`
	EmploymentType   string                      `gorm:"type:varchar(50)" json:"employment_type"`
	Location         string                      `gorm:"type:varchar(255)" json:"location"`
	IsRemote         bool                        `gorm:"default:false" json:"is_remote"`
	RequiredSkills   datatypes.JSONSlice[string] `json:"required_skills"`
	Status           string                      `gorm:"type:varchar(20);default:draft;index" json:"status"`
	Embedding        *pgvector.Vector            `gorm:"type:vector(3072)" json:"-"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

func (j *Job) TableName() string {
	return "jobs"
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	newID(&j.ID)
	return nil
}

func (j *Job) IsPublished() bool {
	return j.Status == JobStatusPublished
}

type Application struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID     uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_application_job_user,priority:1" json:"job_id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_application_job_user,priority:2" json:"user_id"`
	Status    string    `gorm:"type:varchar(20);default:submitted" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}
