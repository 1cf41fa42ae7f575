package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fadilmartias/hirematch/internal/config"
	"go.uber.org/zap/zaptest"
)

func newGeminiTestService(t *testing.T, handler http.HandlerFunc) *GeminiService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewGeminiService(context.Background(), &config.GeminiConfig{
		APIKey:         "test-key",
		BaseURL:        srv.URL,
		Model:          "gemini-2.5-flash",
		EmbeddingModel: "gemini-embedding-001",
		RequestTimeout: 5 * time.Second,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestGeminiExtract(t *testing.T) {
	svc := newGeminiTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"overall_score\": 81}"}]}}]}`)
	})

	res, err := svc.Extract(context.Background(), ExtractionRequest{Instruction: "Score.", Input: "job and candidate", Schema: matchSchema})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if res.Confidence != defaultConfidence {
		t.Fatalf("confidence = %v, want default", res.Confidence)
	}
}

func TestGeminiExtractEmptyCandidates(t *testing.T) {
	svc := newGeminiTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	})
	res, err := svc.Extract(context.Background(), ExtractionRequest{Input: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success || !strings.Contains(res.Error, "no candidates") {
		t.Fatalf("expected no-candidates failure, got %+v", res)
	}
}

func TestGeminiCircuitBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	svc := newGeminiTestService(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"code":500,"message":"backend error","status":"INTERNAL"}}`)
	})

	for i := 0; i < circuitBreakerMax; i++ {
		res, err := svc.Extract(context.Background(), ExtractionRequest{Input: "x"})
		if err != nil || res.Success {
			t.Fatalf("call %d: expected failed result, got %+v, %v", i, res, err)
		}
	}
	if _, open := svc.GetCircuitBreakerStatus(); !open {
		t.Fatal("expected circuit breaker to be open")
	}

	before := hits.Load()
	res, _ := svc.Extract(context.Background(), ExtractionRequest{Input: "x"})
	if res.Success || !strings.Contains(res.Error, "circuit breaker open") {
		t.Fatalf("expected circuit breaker failure, got %+v", res)
	}
	if hits.Load() != before {
		t.Fatal("open circuit must not reach the backend")
	}

	svc.ResetCircuitBreaker()
	if count, open := svc.GetCircuitBreakerStatus(); open || count != 0 {
		t.Fatalf("expected reset breaker, got count=%d open=%v", count, open)
	}
}

func TestNewGeminiServiceRequiresKey(t *testing.T) {
	_, err := NewGeminiService(context.Background(), &config.GeminiConfig{}, nil)
	if !errors.Is(err, ErrClientNotConfigured) {
		t.Fatalf("expected ErrClientNotConfigured, got %v", err)
	}
}
