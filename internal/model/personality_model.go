package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AnalysisStatus string

const (
	AnalysisQueued     AnalysisStatus = "queued"
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisFailed     AnalysisStatus = "failed"
)

// Question is an entry of the canonical personality questionnaire.
type Question struct {
	ID       string `gorm:"type:varchar(64);primaryKey" json:"id"`
	Category string `gorm:"type:varchar(64)" json:"category"`
	Text     string `gorm:"type:text" json:"text"`
	Position int    `json:"position"`
}

func (Question) TableName() string { return "personality_questions" }

// PersonalityResponse is the raw answer audit trail of the latest submission.
type PersonalityResponse struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	QuestionID   string    `gorm:"type:varchar(64)" json:"question_id"`
	Category     string    `gorm:"type:varchar(64)" json:"category"`
	QuestionText string    `gorm:"type:text" json:"question_text"`
	Response     string    `gorm:"type:text" json:"response"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *PersonalityResponse) BeforeCreate(tx *gorm.DB) error {
	newID(&r.ID)
	return nil
}

// PersonalityAnalysis holds both the lifecycle of a user's analysis request
// and its result. There is at most one row per user.
type PersonalityAnalysis struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Status       AnalysisStatus `gorm:"type:varchar(20);index" json:"status"`
	QueuedAt     time.Time      `json:"queued_at"`
	ProcessedAt  *time.Time     `json:"processed_at"`
	ErrorMessage *string        `gorm:"type:text" json:"error_message"`

	ProblemSolvingStyle string                          `gorm:"type:text" json:"problem_solving_style"`
	InitiativeLevel     string                          `gorm:"type:text" json:"initiative_level"`
	WorkPreference      string                          `gorm:"type:text" json:"work_preference"`
	CommunicationStyle  string                          `gorm:"type:text" json:"communication_style"`
	LeadershipPotential string                          `gorm:"type:text" json:"leadership_potential"`
	MotivationalFactors datatypes.JSONSlice[string]     `json:"motivational_factors"`
	GrowthAreas         datatypes.JSONSlice[string]     `json:"growth_areas"`
	AnalyticalScore     *float64                        `json:"analytical_score"`
	CreativeScore       *float64                        `json:"creative_score"`
	LeadershipScore     *float64                        `json:"leadership_score"`
	TeamworkScore       *float64                        `json:"teamwork_score"`
	TraitScores         datatypes.JSONType[TraitScores] `json:"trait_scores"`
	ConfidenceScore     *float64                        `json:"confidence_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PersonalityAnalysis) TableName() string { return "personality_analyses" }

func (a *PersonalityAnalysis) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}

func (a *PersonalityAnalysis) IsReady() bool {
	return a.Status == AnalysisCompleted
}

// TraitScores maps a named trait to a 0-100 score.
type TraitScores map[string]float64
