package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/hirematch/internal/config"
	"github.com/fadilmartias/hirematch/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// OpenRouterService is a StructuredClient backed by the OpenRouter chat
// completions API in JSON-object mode.
type OpenRouterService struct {
	client *resty.Client
	model  string
	logger *zap.Logger
}

func NewOpenRouterService(cfg *config.OpenRouterConfig, log *zap.Logger) (*OpenRouterService, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY not set: %w", ErrClientNotConfigured)
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &OpenRouterService{
		client: client,
		model:  cfg.Model,
		logger: logger.Named(log, "openrouter"),
	}, nil
}

func (s *OpenRouterService) Extract(ctx context.Context, req ExtractionRequest) (Result[json.RawMessage], error) {
	if s == nil || s.client == nil {
		return Result[json.RawMessage]{}, ErrClientNotConfigured
	}
	if strings.TrimSpace(req.Input) == "" {
		return Failed[json.RawMessage]("extraction input is empty"), nil
	}

	system := req.Instruction
	if req.Schema != nil {
		schema, err := json.Marshal(req.Schema)
		if err != nil {
			return Result[json.RawMessage]{}, fmt.Errorf("encode response schema: %w", err)
		}
		system += "\n\nRespond with a single JSON object that conforms to this schema:\n" + string(schema)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model": s.model,
			"messages": []map[string]string{
				{"role": "system", "content": system},
				{"role": "user", "content": req.Input},
			},
			"response_format": map[string]string{"type": "json_object"},
			"temperature":     0.1,
		}).
		Post("/chat/completions")
	if err != nil {
		s.logger.Warn("openrouter request failed", zap.Error(err))
		return Failed[json.RawMessage]("openrouter request failed: " + err.Error()), nil
	}

	body := resp.String()
	if resp.IsError() {
		msg := gjson.Get(body, "error.message").String()
		if msg == "" {
			msg = logger.Truncate(body, 200)
		}
		s.logger.Warn("openrouter returned an error", zap.Int("status", resp.StatusCode()), zap.String("message", msg))
		return Failed[json.RawMessage](fmt.Sprintf("openrouter returned %d: %s", resp.StatusCode(), msg)), nil
	}

	text := gjson.Get(body, "choices.0.message.content").String()
	if strings.TrimSpace(text) == "" {
		return Failed[json.RawMessage]("no response from LLM"), nil
	}
	s.logger.Debug("openrouter response received", zap.String("model", s.model), zap.String("text", logger.Truncate(text, 500)))
	return decodeStructured(text), nil
}
