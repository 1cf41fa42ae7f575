package usecase

import (
	"context"
	"time"

	"github.com/fadilmartias/hirematch/internal/apperror"
	"github.com/fadilmartias/hirematch/internal/dto"
	"github.com/fadilmartias/hirematch/internal/logger"
	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/fadilmartias/hirematch/internal/repository"
	"github.com/fadilmartias/hirematch/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type ResumeParser interface {
	ParseAndValidateResume(ctx context.Context, rawText, filename string) (service.Result[model.ResumeProfile], error)
}

var profileResumeColumns = []string{
	"full_name", "email", "phone", "location", "linkedin_url", "github_url", "website_url",
	"summary", "skills", "resume", "resume_filename", "resume_parsed_at",
}

type ResumeUsecase struct {
	store  *repository.Store
	parser ResumeParser
	logger *zap.Logger
	now    func() time.Time
}

func NewResumeUsecase(store *repository.Store, parser ResumeParser, log *zap.Logger) *ResumeUsecase {
	return &ResumeUsecase{
		store:  store,
		parser: parser,
		logger: logger.Named(log, "resume"),
		now:    time.Now,
	}
}

// ParseResume extracts and validates the resume, then refreshes the
// candidate profile with it.
func (uc *ResumeUsecase) ParseResume(ctx context.Context, userID uuid.UUID, rawText, filename string) (*dto.ResumeParseResponse, error) {
	if userID == uuid.Nil {
		return nil, apperror.Unauthenticated()
	}

	res, err := uc.parser.ParseAndValidateResume(ctx, rawText, filename)
	if err != nil {
		return nil, apperror.Internal("resume parsing unavailable", err)
	}
	if !res.Success {
		return nil, res.Failure()
	}

	resume := res.Data
	parsedAt := uc.now()
	info := resume.PersonalInfo
	profile := &model.CandidateProfile{
		UserID:         userID,
		FullName:       info.FullName,
		Email:          info.Email,
		Phone:          info.Phone,
		Location:       info.Location,
		LinkedInURL:    info.LinkedInURL,
		GitHubURL:      info.GitHubURL,
		WebsiteURL:     info.WebsiteURL,
		Summary:        resume.ProfessionalSummary,
		Skills:         resume.Skills,
		Resume:         datatypes.NewJSONType(&resume),
		ResumeFilename: filename,
		ResumeParsedAt: &parsedAt,
	}
	if err := uc.store.Profiles.UpsertProfile(ctx, profile, profileResumeColumns...); err != nil {
		return nil, apperror.Persistence("failed to save candidate profile", err)
	}

	uc.logger.Info("resume parsed",
		zap.String("user_id", userID.String()),
		zap.String("filename", filename),
		zap.Int("experience", len(resume.Experience)),
		zap.Float64("confidence", res.Confidence),
	)
	return &dto.ResumeParseResponse{
		Resume:     resume,
		Confidence: res.Confidence,
		Filename:   filename,
	}, nil
}
