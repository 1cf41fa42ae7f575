package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/fadilmartias/hirematch/internal/apperror"
	"github.com/tidwall/gjson"
	"google.golang.org/genai"
)

// defaultConfidence is reported when the model output carries no confidence.
const defaultConfidence = 0.8

// ErrClientNotConfigured is returned when an extraction is attempted without
// a usable backend. It is a configuration error, not a model failure.
var ErrClientNotConfigured = errors.New("structured extraction client is not configured")

// Result is the outcome of a fallible AI call. Model-side failures are
// reported through Success and Error, never as Go errors.
type Result[T any] struct {
	Success    bool    `json:"success"`
	Data       T       `json:"data,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`

	// Err classifies the failure when it is known.
	Err error `json:"-"`
}

func Succeeded[T any](data T, confidence float64) Result[T] {
	return Result[T]{Success: true, Data: data, Confidence: confidence}
}

func Failed[T any](message string) Result[T] {
	return Result[T]{Error: message, Err: apperror.Upstream(message)}
}

func FailedWith[T any](err error) Result[T] {
	return Result[T]{Error: err.Error(), Err: err}
}

// Failure returns the failure as an error, or nil for a successful result.
func (r Result[T]) Failure() error {
	if r.Success {
		return nil
	}
	if r.Err != nil {
		return r.Err
	}
	return apperror.Upstream(r.Error)
}

// ExtractionRequest describes one structured-extraction call: what to do,
// the natural-language input, and the expected output shape.
type ExtractionRequest struct {
	Instruction string
	Input       string
	Schema      *genai.Schema
}

// StructuredClient is a generative backend able to return JSON shaped by a schema.
type StructuredClient interface {
	Extract(ctx context.Context, req ExtractionRequest) (Result[json.RawMessage], error)
}

// Extract runs req on client and decodes the payload into T. Output that does
// not decode into T is a failed result.
func Extract[T any](ctx context.Context, client StructuredClient, req ExtractionRequest) (Result[T], error) {
	if client == nil {
		return Result[T]{}, ErrClientNotConfigured
	}
	raw, err := client.Extract(ctx, req)
	if err != nil {
		return Result[T]{}, err
	}
	if !raw.Success {
		return Result[T]{Error: raw.Error, Err: raw.Err}, nil
	}

	var data T
	if err := json.Unmarshal(raw.Data, &data); err != nil {
		return Failed[T]("decode structured output: " + err.Error()), nil
	}
	return Succeeded(data, raw.Confidence), nil
}

// decodeStructured turns raw model text into an extraction result.
func decodeStructured(text string) Result[json.RawMessage] {
	cleaned := extractJSON(text)
	if cleaned == "" {
		return Failed[json.RawMessage]("model returned an empty response")
	}
	if !gjson.Valid(cleaned) {
		return Failed[json.RawMessage]("model returned invalid JSON")
	}
	if !gjson.Parse(cleaned).IsObject() {
		return Failed[json.RawMessage]("model returned a non-object JSON value")
	}
	return Succeeded(json.RawMessage(cleaned), confidenceOf(cleaned))
}

func confidenceOf(doc string) float64 {
	for _, path := range []string{"confidence_score", "confidence_scores.overall", "confidence"} {
		v := gjson.Get(doc, path)
		if !v.Exists() || v.Type != gjson.Number {
			continue
		}
		if c := v.Float(); c >= 0 && c <= 1 {
			return c
		}
	}
	return defaultConfidence
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func objectSchema(properties map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: properties, Required: required}
}

func stringSchema(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func nullableString(description string) *genai.Schema {
	s := stringSchema(description)
	s.Nullable = genai.Ptr(true)
	return s
}

func numberSchema(description string, min, max float64) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeNumber,
		Description: description,
		Minimum:     genai.Ptr(min),
		Maximum:     genai.Ptr(max),
	}
}

func arraySchema(items *genai.Schema, description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items, Description: description}
}
