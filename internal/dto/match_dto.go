package dto

import "github.com/google/uuid"

type EnqueueMatchRequest struct {
	JobID  uuid.UUID `json:"jobId" validate:"required"`
	UserID uuid.UUID `json:"userId" validate:"required"`
}

type EnqueueMatchResponse struct {
	JobID  uuid.UUID `json:"jobId"`
	UserID uuid.UUID `json:"userId"`
	Status string    `json:"status"`
}
