package dto

import "github.com/fadilmartias/hirematch/internal/model"

// ResumeParseRequest carries already-extracted resume text.
type ResumeParseRequest struct {
	Text     string `json:"text" validate:"notblank"`
	Filename string `json:"filename"`
}

type ResumeParseResponse struct {
	Resume     model.ResumeProfile `json:"resume"`
	Confidence float64             `json:"confidence"`
	Filename   string              `json:"filename"`
}
