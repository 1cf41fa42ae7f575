package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/fadilmartias/hirematch/internal/config"
	"github.com/fadilmartias/hirematch/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	maxEmbeddingInput = 10000
	circuitBreakerMax = 5
)

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type GeminiService struct {
	Client         *genai.Client
	Model          string
	EmbeddingModel string
	RequestTimeout time.Duration

	logger *zap.Logger

	mu                sync.Mutex
	consecutiveErrors int
	circuitBreakerMax int
}

func NewGeminiService(ctx context.Context, cfg *config.GeminiConfig, log *zap.Logger) (*GeminiService, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set: %w", ErrClientNotConfigured)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &GeminiService{
		Client:            client,
		Model:             cfg.Model,
		EmbeddingModel:    cfg.EmbeddingModel,
		RequestTimeout:    timeout,
		logger:            logger.Named(log, "gemini"),
		circuitBreakerMax: circuitBreakerMax,
	}, nil
}

// Extract asks Gemini for a JSON object shaped by req.Schema. Every model-side
// problem is reported as a failed result.
func (s *GeminiService) Extract(ctx context.Context, req ExtractionRequest) (Result[json.RawMessage], error) {
	if s == nil || s.Client == nil {
		return Result[json.RawMessage]{}, ErrClientNotConfigured
	}
	if strings.TrimSpace(req.Input) == "" {
		return Failed[json.RawMessage]("extraction input is empty"), nil
	}
	if open, count := s.circuitOpen(); open {
		return Failed[json.RawMessage](fmt.Sprintf("circuit breaker open: too many consecutive errors (%d)", count)), nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	genConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	if req.Instruction != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.Instruction, genai.RoleUser)
	}

	start := time.Now()
	resp, err := s.Client.Models.GenerateContent(timeoutCtx, s.Model, genai.Text(req.Input), genConfig)
	if err != nil {
		s.recordFailure(err)
		s.logger.Warn("generate content failed", zap.String("model", s.Model), zap.Error(err))
		return Failed[json.RawMessage](describeGeminiError(err)), nil
	}
	s.recordSuccess()

	if err := s.validateGenerateResponse(resp); err != nil {
		return Failed[json.RawMessage]("invalid response: " + err.Error()), nil
	}

	text := resp.Text()
	s.logger.Debug("gemini response received",
		zap.String("model", s.Model),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("text", logger.Truncate(text, 500)),
	)
	return decodeStructured(text), nil
}

func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}
	if len(trimmed) > maxEmbeddingInput {
		s.logger.Warn("embedding input truncated", zap.Int("length", len(trimmed)))
		trimmed = trimmed[:maxEmbeddingInput]
	}
	if open, count := s.circuitOpen(); open {
		return nil, fmt.Errorf("circuit breaker open: too many consecutive errors (%d)", count)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	content := []*genai.Content{genai.NewContentFromText(trimmed, genai.RoleUser)}
	result, err := s.Client.Models.EmbedContent(timeoutCtx, s.EmbeddingModel, content, nil)
	if err != nil {
		s.recordFailure(err)
		return nil, fmt.Errorf("generate embedding failed: %w", err)
	}
	s.recordSuccess()

	embeddings, err := s.validateEmbeddingResponse(result)
	if err != nil {
		return nil, fmt.Errorf("invalid embedding response: %w", err)
	}
	return embeddings, nil
}

func (s *GeminiService) validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}

func (s *GeminiService) validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("no embeddings returned")
	}

	embeddings := resp.Embeddings[0].Values
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	for i, val := range embeddings {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, val)
		}
	}
	return embeddings, nil
}

func (s *GeminiService) circuitOpen() (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveErrors >= s.circuitBreakerMax, s.consecutiveErrors
}

// recordFailure counts server-side and transport errors toward the breaker.
// Client errors (bad request, auth) say nothing about availability.
func (s *GeminiService) recordFailure(err error) {
	if apiErr, ok := asAPIError(err); ok && apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != 429 {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	s.mu.Lock()
	s.consecutiveErrors++
	s.mu.Unlock()
}

func (s *GeminiService) recordSuccess() {
	s.mu.Lock()
	s.consecutiveErrors = 0
	s.mu.Unlock()
}

func (s *GeminiService) ResetCircuitBreaker() {
	s.recordSuccess()
	s.logger.Info("circuit breaker reset")
}

func (s *GeminiService) GetCircuitBreakerStatus() (consecutiveErrors int, isOpen bool) {
	open, count := s.circuitOpen()
	return count, open
}

func describeGeminiError(err error) string {
	if apiErr, ok := asAPIError(err); ok {
		switch apiErr.Code {
		case 429:
			return "gemini rate limit exceeded: " + apiErr.Message
		case 500, 502, 503, 504:
			return fmt.Sprintf("gemini unavailable (%d): %s", apiErr.Code, apiErr.Message)
		default:
			return fmt.Sprintf("gemini request rejected (%d): %s", apiErr.Code, apiErr.Message)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "gemini request timed out"
	}
	return "gemini request failed: " + err.Error()
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}
