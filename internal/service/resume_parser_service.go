package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fadilmartias/hirematch/internal/apperror"
	"github.com/fadilmartias/hirematch/internal/logger"
	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/fadilmartias/hirematch/internal/validation"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

var (
	ErrMissingRequiredFields = apperror.Validation("MissingRequiredFields", "missing required fields")
	ErrInvalidEmailFormat    = apperror.Validation("InvalidEmailFormat", "invalid email format")
	ErrEmptyResume           = apperror.Validation("EmptyResume", "resume text is empty")
)

// DefaultResumeConfidence is applied when the model omits its confidence block.
var DefaultResumeConfidence = model.ResumeConfidence{
	Overall:      0.7,
	PersonalInfo: 0.8,
	Experience:   0.7,
	Education:    0.7,
	Skills:       0.6,
}

const resumeInstruction = `You are an expert resume parser for a hiring platform.
Extract the candidate's information from the resume text exactly as written.
Use null for unknown dates and for the end date of the current position.
Dates use YYYY-MM or YYYY. Do not invent employers, degrees, or contact details.
Rate your confidence in each section between 0.0 and 1.0.`

type ResumeParser struct {
	client  StructuredClient
	retrier *Retrier
	logger  *zap.Logger
}

func NewResumeParser(client StructuredClient, retrier *Retrier, log *zap.Logger) *ResumeParser {
	return &ResumeParser{
		client:  client,
		retrier: retrier,
		logger:  logger.Named(log, "resume_parser"),
	}
}

// ParseResumeWithAI extracts a ResumeProfile from raw resume text without
// validating it.
func (p *ResumeParser) ParseResumeWithAI(ctx context.Context, rawText, filename string) (Result[model.ResumeProfile], error) {
	if strings.TrimSpace(rawText) == "" {
		return FailedWith[model.ResumeProfile](ErrEmptyResume), nil
	}

	req := ExtractionRequest{
		Instruction: resumeInstruction,
		Input:       fmt.Sprintf("Resume file: %s\n\nResume text:\n%s", filename, rawText),
		Schema:      resumeSchema,
	}
	res, err := Retry(ctx, p.retrier, func(ctx context.Context) (Result[model.ResumeProfile], error) {
		return Extract[model.ResumeProfile](ctx, p.client, req)
	})
	if err != nil {
		return res, err
	}
	if !res.Success {
		p.logger.Warn("resume extraction failed", zap.String("filename", filename), zap.String("error", res.Error))
	}
	return res, nil
}

// ParseAndValidateResume parses the resume and enforces the profile
// invariants. Invalid extractions fail with ErrMissingRequiredFields or
// ErrInvalidEmailFormat and their data is discarded.
func (p *ResumeParser) ParseAndValidateResume(ctx context.Context, rawText, filename string) (Result[model.ResumeProfile], error) {
	res, err := p.ParseResumeWithAI(ctx, rawText, filename)
	if err != nil || !res.Success {
		return res, err
	}

	profile, err := NormalizeResume(res.Data)
	if err != nil {
		p.logger.Info("resume rejected", zap.String("filename", filename), zap.Error(err))
		return FailedWith[model.ResumeProfile](err), nil
	}
	return Succeeded(profile, profile.ConfidenceScores.Overall), nil
}

// NormalizeResume validates the mandatory fields and fills the derived and
// defaulted ones.
func NormalizeResume(profile model.ResumeProfile) (model.ResumeProfile, error) {
	info := &profile.PersonalInfo
	info.FullName = strings.TrimSpace(info.FullName)
	info.Email = strings.TrimSpace(info.Email)

	violations, err := validation.Check(profile)
	if err != nil {
		return model.ResumeProfile{}, apperror.Internal("cannot validate resume", err)
	}
	var missing []string
	var invalidEmail bool
	for _, v := range violations {
		switch v.Tag {
		case "required", "notblank":
			missing = append(missing, v.Field)
		case "email":
			invalidEmail = true
		}
	}
	if len(missing) > 0 {
		return model.ResumeProfile{}, apperror.New(apperror.KindValidation, ErrMissingRequiredFields.Code,
			"missing required fields: "+strings.Join(missing, ", "), nil)
	}
	if invalidEmail {
		return model.ResumeProfile{}, apperror.New(apperror.KindValidation, ErrInvalidEmailFormat.Code,
			fmt.Sprintf("invalid email format: %q", info.Email), nil)
	}

	for i := range profile.Experience {
		exp := &profile.Experience[i]
		if exp.EndDate != nil && strings.TrimSpace(*exp.EndDate) == "" {
			exp.EndDate = nil
		}
		if exp.EndDate == nil {
			exp.IsCurrent = true
		}
		if exp.Achievements == nil {
			exp.Achievements = []string{}
		}
	}

	if profile.Experience == nil {
		profile.Experience = []model.ExperienceEntry{}
	}
	if profile.Education == nil {
		profile.Education = []model.EducationEntry{}
	}
	if profile.Skills == nil {
		profile.Skills = []string{}
	}
	if profile.Languages == nil {
		profile.Languages = []string{}
	}
	if profile.Certifications == nil {
		profile.Certifications = []string{}
	}
	if profile.ConfidenceScores == nil {
		defaults := DefaultResumeConfidence
		profile.ConfidenceScores = &defaults
	}
	return profile, nil
}

var resumeSchema = objectSchema(map[string]*genai.Schema{
	"personal_info": objectSchema(map[string]*genai.Schema{
		"full_name":    stringSchema("Candidate's full name"),
		"email":        stringSchema("Primary email address"),
		"phone":        stringSchema("Phone number"),
		"location":     stringSchema("City and country"),
		"linkedin_url": stringSchema("LinkedIn profile URL"),
		"github_url":   stringSchema("GitHub profile URL"),
		"website_url":  stringSchema("Personal website or portfolio URL"),
	}, "full_name", "email"),
	"professional_summary": stringSchema("Two to four sentence professional summary"),
	"experience": arraySchema(objectSchema(map[string]*genai.Schema{
		"company":      stringSchema("Employer name"),
		"position":     stringSchema("Job title"),
		"location":     stringSchema("Work location"),
		"start_date":   nullableString("Start date"),
		"end_date":     nullableString("End date, null when current"),
		"is_current":   {Type: genai.TypeBoolean},
		"description":  stringSchema("Role description"),
		"achievements": arraySchema(stringSchema(""), "Notable achievements"),
	}, "company", "position"), "Work history, most recent first"),
	"education": arraySchema(objectSchema(map[string]*genai.Schema{
		"institution":    stringSchema("School or university"),
		"degree":         stringSchema("Degree obtained"),
		"field_of_study": stringSchema("Major or field"),
		"start_date":     nullableString("Start date"),
		"end_date":       nullableString("End date"),
		"gpa":            {Type: genai.TypeNumber, Nullable: genai.Ptr(true)},
	}, "institution", "degree"), "Education history"),
	"skills":         arraySchema(stringSchema(""), "Technical and professional skills"),
	"languages":      arraySchema(stringSchema(""), "Spoken languages"),
	"certifications": arraySchema(stringSchema(""), "Certifications"),
	"confidence_scores": objectSchema(map[string]*genai.Schema{
		"overall":       numberSchema("Overall confidence", 0, 1),
		"personal_info": numberSchema("Confidence in personal info", 0, 1),
		"experience":    numberSchema("Confidence in experience", 0, 1),
		"education":     numberSchema("Confidence in education", 0, 1),
		"skills":        numberSchema("Confidence in skills", 0, 1),
	}, "overall"),
}, "personal_info", "experience", "education", "skills")
