package config

import (
	"strings"
	"sync"
	"time"
)

// Execution modes for background analysis work.
const (
	ExecutionDeferred = "deferred"
	ExecutionInline   = "inline"
	ExecutionDisabled = "disabled"
)

type PipelineConfig struct {
	ExecutionMode         string
	MaxAttempts           int
	RetryBaseDelay        time.Duration
	RetryMaxDelay         time.Duration
	BackgroundConcurrency int
	TaskTimeout           time.Duration
}

var (
	pipelineConfig *PipelineConfig
	pipelineOnce   sync.Once
)

func LoadPipelineConfig() *PipelineConfig {
	pipelineOnce.Do(func() {
		mode := strings.ToLower(getEnv("ANALYSIS_EXECUTION_MODE", ""))
		if mode == "" {
			mode = ExecutionDeferred
			if LoadAppConfig().IsTest() {
				mode = ExecutionDisabled
			}
		}
		pipelineConfig = &PipelineConfig{
			ExecutionMode:         mode,
			MaxAttempts:           getEnvInt("AI_MAX_ATTEMPTS", 3),
			RetryBaseDelay:        getEnvDuration("AI_RETRY_BASE_DELAY", time.Second),
			RetryMaxDelay:         getEnvDuration("AI_RETRY_MAX_DELAY", 30*time.Second),
			BackgroundConcurrency: getEnvInt("BACKGROUND_CONCURRENCY", 8),
			TaskTimeout:           getEnvDuration("BACKGROUND_TASK_TIMEOUT", 5*time.Minute),
		}
	})
	return pipelineConfig
}
