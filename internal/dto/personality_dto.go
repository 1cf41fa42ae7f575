package dto

import (
	"time"

	"github.com/google/uuid"
)

// PersonalitySubmitRequest maps question ids to free-text answers.
type PersonalitySubmitRequest struct {
	Responses map[string]string `json:"responses" validate:"required,min=1"`
}

type PersonalitySubmitResponse struct {
	Status        string    `json:"status"`
	QueuedAt      time.Time `json:"queuedAt"`
	ResponseCount int       `json:"responseCount"`
}

// AnalysisStatusResponse reports the lifecycle of a user's analysis.
// Status is "not_started" when the user never submitted.
type AnalysisStatusResponse struct {
	Status      string     `json:"status"`
	QueuedAt    *time.Time `json:"queuedAt"`
	ProcessedAt *time.Time `json:"processedAt"`
	Error       *string    `json:"error"`
	LastUpdated *time.Time `json:"lastUpdated"`
	IsReady     bool       `json:"isReady"`
}

type PersonalityResultResponse struct {
	UserID              uuid.UUID          `json:"userId"`
	ProblemSolvingStyle string             `json:"problemSolvingStyle"`
	InitiativeLevel     string             `json:"initiativeLevel"`
	WorkPreference      string             `json:"workPreference"`
	CommunicationStyle  string             `json:"communicationStyle"`
	LeadershipPotential string             `json:"leadershipPotential"`
	MotivationalFactors []string           `json:"motivationalFactors"`
	GrowthAreas         []string           `json:"growthAreas"`
	AnalyticalScore     *float64           `json:"analyticalScore"`
	CreativeScore       *float64           `json:"creativeScore"`
	LeadershipScore     *float64           `json:"leadershipScore"`
	TeamworkScore       *float64           `json:"teamworkScore"`
	TraitScores         map[string]float64 `json:"traitScores"`
	ConfidenceScore     *float64           `json:"confidenceScore"`
	ProcessedAt         *time.Time         `json:"processedAt"`
}
