package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fadilmartias/hirematch/internal/config"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"
)

func newOpenRouterTestService(t *testing.T, handler http.HandlerFunc) *OpenRouterService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewOpenRouterService(&config.OpenRouterConfig{
		APIKey:         "test-key",
		BaseURL:        srv.URL,
		Model:          "openai/gpt-4o-mini",
		RequestTimeout: 5 * time.Second,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestOpenRouterExtract(t *testing.T) {
	var body string
	svc := newOpenRouterTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"{\"score\": 7, \"confidence_score\": 0.9}"}}]}`)
	})

	res, err := svc.Extract(context.Background(), ExtractionRequest{
		Instruction: "Score it.",
		Input:       "candidate text",
		Schema:      objectSchema(nil, "score"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if res.Confidence != 0.9 || gjson.GetBytes(res.Data, "score").Int() != 7 {
		t.Fatalf("unexpected result: %s (confidence %v)", res.Data, res.Confidence)
	}

	if gjson.Get(body, "response_format.type").String() != "json_object" {
		t.Errorf("json mode not requested: %s", body)
	}
	system := gjson.Get(body, "messages.0.content").String()
	if !strings.HasPrefix(system, "Score it.") || !strings.Contains(system, "schema") {
		t.Errorf("schema not embedded in system message: %q", system)
	}
	if gjson.Get(body, "messages.1.content").String() != "candidate text" {
		t.Errorf("input not sent as user message: %s", body)
	}
}

func TestOpenRouterExtractFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`, "openrouter returned 429: rate limited"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no response from LLM"},
		{"not json", http.StatusOK, `{"choices":[{"message":{"content":"sure! here you go"}}]}`, "model returned invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newOpenRouterTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			res, err := svc.Extract(context.Background(), ExtractionRequest{Input: "x"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Success || res.Error != tt.want {
				t.Fatalf("got success=%v error=%q, want %q", res.Success, res.Error, tt.want)
			}
		})
	}
}

func TestNewOpenRouterServiceRequiresKey(t *testing.T) {
	_, err := NewOpenRouterService(&config.OpenRouterConfig{}, nil)
	if !errors.Is(err, ErrClientNotConfigured) {
		t.Fatalf("expected ErrClientNotConfigured, got %v", err)
	}
}

func TestOpenRouterResultDecodesThroughExtract(t *testing.T) {
	svc := newOpenRouterTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "```json\n{\"name\":\"Ada\"}\n```"}}},
		})
	})
	res, err := Extract[struct {
		Name string `json:"name"`
	}](context.Background(), svc, ExtractionRequest{Input: "x"})
	if err != nil || !res.Success || res.Data.Name != "Ada" {
		t.Fatalf("unexpected result %+v, %v", res, err)
	}
}
