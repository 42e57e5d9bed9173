package llm

import (
	"log/slog"

	"github.com/suh004757/AI-Invoice-Generator/internal/common"
)

// Provider tags accepted by NewClient.
const (
	ProviderClaude   = "claude"
	ProviderOpenAI   = "openai"
	ProviderLMStudio = "lm_studio"
)

// NewClient selects the backend variant by provider tag. Unknown tags and
// missing credentials are configuration errors; there is no safe default
// backend to fall back to.
func NewClient(cfg common.LLMConfig, logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := ChatOptions{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	switch cfg.Provider {
	case ProviderClaude:
		if cfg.ClaudeAPIKey == "" {
			return nil, common.NewAppError("CONFIG_ERROR", "claude api key is required", common.ErrConfiguration)
		}
		return NewClaudeClient(cfg.ClaudeAPIKey, cfg.ClaudeModel, opts, cfg.Timeout, logger), nil
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, common.NewAppError("CONFIG_ERROR", "openai api key is required", common.ErrConfiguration)
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, opts, cfg.Timeout, logger), nil
	case ProviderLMStudio:
		return NewLMStudioClient(cfg.LMStudioURL, cfg.LMStudioModel, opts, cfg.Timeout, logger), nil
	default:
		return nil, common.NewAppError("CONFIG_ERROR", "unknown LLM provider: "+cfg.Provider, common.ErrConfiguration)
	}
}
