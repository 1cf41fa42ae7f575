package config

import (
	"os"
	"sync"
	"time"
)

type OpenRouterConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	RequestTimeout time.Duration
}

var (
	openRouterConfig *OpenRouterConfig
	openRouterOnce   sync.Once
)

func LoadOpenRouterConfig() *OpenRouterConfig {
	openRouterOnce.Do(func() {
		openRouterConfig = &OpenRouterConfig{
			APIKey:         os.Getenv("OPENROUTER_API_KEY"),
			BaseURL:        getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:          getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
			RequestTimeout: getEnvDuration("OPENROUTER_REQUEST_TIMEOUT", 90*time.Second),
		}
	})
	return openRouterConfig
}
