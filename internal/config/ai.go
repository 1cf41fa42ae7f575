package config

import (
	"strings"
	"sync"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

type AIConfig struct {
	// Provider selects the structured-extraction backend. Embeddings always
	// go through Gemini.
	Provider string
}

var (
	aiConfig *AIConfig
	aiOnce   sync.Once
)

func LoadAIConfig() *AIConfig {
	aiOnce.Do(func() {
		aiConfig = &AIConfig{
			Provider: strings.ToLower(getEnv("AI_PROVIDER", ProviderGemini)),
		}
	})
	return aiConfig
}
