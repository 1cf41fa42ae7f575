package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MatchScore is the current compatibility score of a candidate for a job.
// Recomputing overwrites the row for the (job, user) pair.
type MatchScore struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	JobID            uuid.UUID                   `gorm:"type:uuid;uniqueIndex:idx_match_job_user,priority:1" json:"job_id"`
	UserID           uuid.UUID                   `gorm:"type:uuid;uniqueIndex:idx_match_job_user,priority:2" json:"user_id"`
	OverallScore     float64                     `gorm:"type:float;index" json:"overall_score"`
	SkillsScore      float64                     `gorm:"type:float" json:"skills_score"`
	ExperienceScore  float64                     `gorm:"type:float" json:"experience_score"`
	CultureFitScore  float64                     `gorm:"type:float" json:"culture_fit_score"`
	PersonalityScore float64                     `gorm:"type:float" json:"personality_score"`
	Explanation      string                      `gorm:"type:text" json:"explanation"`
	Strengths        datatypes.JSONSlice[string] `json:"strengths"`
	Gaps             datatypes.JSONSlice[string] `json:"gaps"`
	CalculatedAt     time.Time                   `json:"calculated_at"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

func (m *MatchScore) BeforeCreate(tx *gorm.DB) error {
	newID(&m.ID)
	return nil
}
