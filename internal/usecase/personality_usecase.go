package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fadilmartias/hirematch/internal/apperror"
	"github.com/fadilmartias/hirematch/internal/dto"
	"github.com/fadilmartias/hirematch/internal/logger"
	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/fadilmartias/hirematch/internal/repository"
	"github.com/fadilmartias/hirematch/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	genericAnalysisError = "Internal error during analysis processing"
	unknownQuestionText  = "Question not found"
	unknownCategory      = "general"
	statusNotStarted     = "not_started"
)

type PersonalityAnalyzer interface {
	AnalyzePersonality(ctx context.Context, responses []service.QuestionResponse) (service.Result[service.PersonalityProfile], error)
}

// PersonalityUsecase accepts questionnaire submissions and drives the
// analysis lifecycle queued -> processing -> completed | failed.
type PersonalityUsecase struct {
	store    *repository.Store
	system   *repository.Store
	analyzer PersonalityAnalyzer
	runner   Runner
	logger   *zap.Logger
	now      func() time.Time
}

// NewPersonalityUsecase wires the request-path store and the elevated store
// used by background processing.
func NewPersonalityUsecase(store, system *repository.Store, analyzer PersonalityAnalyzer, runner Runner, log *zap.Logger) *PersonalityUsecase {
	return &PersonalityUsecase{
		store:    store,
		system:   system,
		analyzer: analyzer,
		runner:   runner,
		logger:   logger.Named(log, "personality"),
		now:      time.Now,
	}
}

// Submit stores the answers, queues the analysis and schedules it. It returns
// as soon as the request is queued.
func (uc *PersonalityUsecase) Submit(ctx context.Context, userID uuid.UUID, answers map[string]string) (*dto.PersonalitySubmitResponse, error) {
	if userID == uuid.Nil {
		return nil, apperror.Unauthenticated()
	}
	if len(answers) == 0 {
		return nil, apperror.Validation("EmptyResponses", "no responses submitted")
	}

	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	questions, err := uc.store.Questions.FindQuestionsByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Persistence("failed to load questions", err)
	}

	rows := buildResponseRows(userID, answers, questions)
	queuedAt := uc.now()

	err = uc.store.Transaction(ctx, func(tx *repository.Store) error {
		// Raw answers are an audit trail only; losing them must not block the analysis.
		if err := tx.Savepoint("responses", func() error {
			if err := tx.Responses.DeleteByUserID(ctx, userID); err != nil {
				return err
			}
			return tx.Responses.CreateResponses(ctx, rows)
		}); err != nil {
			uc.logger.Warn("failed to store raw responses", zap.String("user_id", userID.String()), zap.Error(err))
		}

		if err := tx.Analyses.UpsertQueued(ctx, userID, queuedAt); err != nil {
			return apperror.Persistence("failed to queue personality analysis", err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.Persistence("failed to queue personality analysis", err)
	}

	uc.setFlags(ctx, uc.store, userID, map[string]any{
		"personality_test_completed": true,
		"ai_analysis_completed":      false,
	})

	responses := toQuestionResponses(rows)
	uc.runner.Go("personality-analysis", func(ctx context.Context) {
		uc.Process(ctx, userID, responses)
	})

	uc.logger.Info("personality analysis queued", zap.String("user_id", userID.String()), zap.Int("responses", len(rows)))
	return &dto.PersonalitySubmitResponse{
		Status:        string(model.AnalysisQueued),
		QueuedAt:      queuedAt,
		ResponseCount: len(rows),
	}, nil
}

// Process runs one analysis on the elevated store. Every error and panic ends
// with the analysis marked failed.
func (uc *PersonalityUsecase) Process(ctx context.Context, userID uuid.UUID, responses []service.QuestionResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			uc.logger.Error("personality analysis panic",
				zap.String("user_id", userID.String()),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			uc.fail(ctx, userID, genericAnalysisError)
		}
	}()

	if err := uc.process(ctx, userID, responses); err != nil {
		uc.logger.Warn("personality analysis failed", zap.String("user_id", userID.String()), zap.Error(err))
		uc.fail(ctx, userID, err.Error())
	}
}

func (uc *PersonalityUsecase) process(ctx context.Context, userID uuid.UUID, responses []service.QuestionResponse) error {
	if err := uc.system.Analyses.MarkProcessing(ctx, userID); err != nil {
		return fmt.Errorf("mark analysis processing: %w", err)
	}

	res, err := uc.analyzer.AnalyzePersonality(ctx, responses)
	if err != nil {
		return fmt.Errorf("analyze personality: %w", err)
	}
	if !res.Success {
		return errors.New(res.Error)
	}
	if report := service.ValidatePersonalityAnalysis(res.Data); !report.Valid {
		return fmt.Errorf("invalid personality analysis: %s", strings.Join(report.Errors, "; "))
	}

	processedAt := uc.now()
	row := &model.PersonalityAnalysis{
		UserID:      userID,
		ProcessedAt: &processedAt,
	}
	res.Data.ApplyTo(row)
	if err := uc.system.Analyses.SaveCompleted(ctx, row); err != nil {
		return fmt.Errorf("save personality analysis: %w", err)
	}

	uc.setFlags(ctx, uc.system, userID, map[string]any{"ai_analysis_completed": true})
	uc.logger.Info("personality analysis completed",
		zap.String("user_id", userID.String()),
		zap.Float64("confidence", res.Confidence),
	)
	return nil
}

func (uc *PersonalityUsecase) fail(ctx context.Context, userID uuid.UUID, message string) {
	ctx = context.WithoutCancel(ctx)
	at := uc.now()
	if err := uc.system.Analyses.MarkFailed(ctx, userID, message, at); err != nil {
		uc.logger.Error("failed to mark analysis failed", zap.String("user_id", userID.String()), zap.Error(err))
		if message == genericAnalysisError {
			return
		}
		if err := uc.system.Analyses.MarkFailed(ctx, userID, genericAnalysisError, at); err != nil {
			uc.logger.Error("analysis left unresolved", zap.String("user_id", userID.String()), zap.Error(err))
			return
		}
	}
	uc.setFlags(ctx, uc.system, userID, map[string]any{"ai_analysis_completed": false})
}

// Status reports the analysis lifecycle without modifying anything.
func (uc *PersonalityUsecase) Status(ctx context.Context, userID uuid.UUID) (*dto.AnalysisStatusResponse, error) {
	if userID == uuid.Nil {
		return nil, apperror.Unauthenticated()
	}
	a, err := uc.store.Analyses.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &dto.AnalysisStatusResponse{Status: statusNotStarted}, nil
	}
	if err != nil {
		return nil, apperror.Persistence("failed to load analysis status", err)
	}

	queuedAt := a.QueuedAt
	updatedAt := a.UpdatedAt
	return &dto.AnalysisStatusResponse{
		Status:      string(a.Status),
		QueuedAt:    &queuedAt,
		ProcessedAt: a.ProcessedAt,
		Error:       a.ErrorMessage,
		LastUpdated: &updatedAt,
		IsReady:     a.IsReady(),
	}, nil
}

// Result returns the completed analysis of the user.
func (uc *PersonalityUsecase) Result(ctx context.Context, userID uuid.UUID) (*dto.PersonalityResultResponse, error) {
	if userID == uuid.Nil {
		return nil, apperror.Unauthenticated()
	}
	a, err := uc.store.Analyses.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("personality analysis not found", err)
	}
	if err != nil {
		return nil, apperror.Persistence("failed to load analysis", err)
	}
	if !a.IsReady() {
		return nil, apperror.NotFound(fmt.Sprintf("personality analysis is %s", a.Status), nil)
	}

	return &dto.PersonalityResultResponse{
		UserID:              a.UserID,
		ProblemSolvingStyle: a.ProblemSolvingStyle,
		InitiativeLevel:     a.InitiativeLevel,
		WorkPreference:      a.WorkPreference,
		CommunicationStyle:  a.CommunicationStyle,
		LeadershipPotential: a.LeadershipPotential,
		MotivationalFactors: a.MotivationalFactors,
		GrowthAreas:         a.GrowthAreas,
		AnalyticalScore:     a.AnalyticalScore,
		CreativeScore:       a.CreativeScore,
		LeadershipScore:     a.LeadershipScore,
		TeamworkScore:       a.TeamworkScore,
		TraitScores:         a.TraitScores.Data(),
		ConfidenceScore:     a.ConfidenceScore,
		ProcessedAt:         a.ProcessedAt,
	}, nil
}

func (uc *PersonalityUsecase) setFlags(ctx context.Context, store *repository.Store, userID uuid.UUID, flags map[string]any) {
	if err := store.Users.SetAnalysisFlags(ctx, userID, flags); err != nil {
		uc.logger.Warn("failed to update user flags", zap.String("user_id", userID.String()), zap.Error(err))
	}
	if err := store.Profiles.SetAnalysisFlags(ctx, userID, flags); err != nil {
		uc.logger.Warn("failed to update profile flags", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// buildResponseRows resolves every answer against the question bank. Unknown
// ids are kept with placeholder text so no answer is dropped.
func buildResponseRows(userID uuid.UUID, answers map[string]string, questions map[string]model.Question) []model.PersonalityResponse {
	rows := make([]model.PersonalityResponse, 0, len(answers))
	for id, answer := range answers {
		row := model.PersonalityResponse{
			UserID:       userID,
			QuestionID:   id,
			Category:     unknownCategory,
			QuestionText: unknownQuestionText,
			Response:     answer,
		}
		if q, ok := questions[id]; ok {
			row.Category = q.Category
			row.QuestionText = q.Text
			row.Position = q.Position
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		_, knownI := questions[rows[i].QuestionID]
		_, knownJ := questions[rows[j].QuestionID]
		if knownI != knownJ {
			return knownI
		}
		if rows[i].Position != rows[j].Position {
			return rows[i].Position < rows[j].Position
		}
		return rows[i].QuestionID < rows[j].QuestionID
	})
	return rows
}

func toQuestionResponses(rows []model.PersonalityResponse) []service.QuestionResponse {
	out := make([]service.QuestionResponse, len(rows))
	for i, r := range rows {
		out[i] = service.QuestionResponse{
			QuestionID: r.QuestionID,
			Category:   r.Category,
			Question:   r.QuestionText,
			Response:   r.Response,
		}
	}
	return out
}
