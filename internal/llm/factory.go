package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// NewProvider creates the configured provider. An empty provider name returns
// (nil, nil): AI scoring is disabled and the heuristic analyzer takes over.
func NewProvider(ctx context.Context, config Config, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "gemini", "google":
		return NewGeminiProvider(ctx, config, logger)

	case "openai":
		return NewOpenAIProvider(config, logger)

	case "ollama":
		return NewOllamaProvider(config, logger)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown AI provider: %s (supported: gemini, openai, ollama)", config.Provider)
	}
}

// Configured reports whether config would yield a provider, without creating one
func Configured(config Config) bool {
	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "gemini", "google":
		return ValidGeminiKey(config.APIKey)
	case "openai":
		return usableKey(config.APIKey)
	case "ollama":
		return true
	}
	return false
}
