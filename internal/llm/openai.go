package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const defaultOllamaURL = "http://localhost:11434/v1"

// OpenAIProvider implements Provider for OpenAI and OpenAI-compatible endpoints (Ollama)
type OpenAIProvider struct {
	client   *openai.Client
	config   Config
	name     string
	jsonMode bool
	logger   *zap.Logger
}

// NewOpenAIProvider creates a provider for api.openai.com or config.BaseURL
func NewOpenAIProvider(config Config, logger *zap.Logger) (*OpenAIProvider, error) {
	if !usableKey(config.APIKey) {
		return nil, fmt.Errorf("openai: %w", ErrNotConfigured)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}

	return &OpenAIProvider{
		client:   openai.NewClientWithConfig(clientConfig),
		config:   config,
		name:     "openai",
		jsonMode: true,
		logger:   logger,
	}, nil
}

// NewOllamaProvider talks to a local Ollama through its OpenAI-compatible API
func NewOllamaProvider(config Config, logger *zap.Logger) (*OpenAIProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if config.Model == "" {
		config.Model = "llama3.1"
	}

	clientConfig := openai.DefaultConfig("ollama")
	clientConfig.BaseURL = strings.TrimRight(baseURL, "/")

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   "ollama",
		logger: logger,
	}, nil
}

func usableKey(key string) bool {
	k := strings.TrimSpace(key)
	if k == "" || strings.ContainsAny(k, " \t\r\n") {
		return false
	}
	l := strings.ToLower(k)
	return !strings.Contains(l, "your_") && !strings.Contains(l, "your-") && !strings.HasPrefix(l, "dummy")
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable lists models as a lightweight round trip
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()
	if _, err := p.client.ListModels(ctx); err != nil {
		p.logger.Warn("ai availability check failed", zap.String("provider", p.name), zap.Error(err))
		return false
	}
	return true
}

// Analyze scores a claim
func (p *OpenAIProvider) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	var out *AnalyzeResponse
	err := p.complete(ctx, BuildAnalyzePrompt(req), func(text string) error {
		r, err := ParseAnalyzeResponse(text)
		if err != nil {
			return err
		}
		r.Model = p.config.Model
		out = r
		return nil
	})
	return out, err
}

// ClaimantBackground looks up a claimant profile
func (p *OpenAIProvider) ClaimantBackground(ctx context.Context, name string) (*Background, error) {
	var out *Background
	err := p.complete(ctx, BuildBackgroundPrompt(name), func(text string) error {
		b, err := ParseBackground(text)
		out = b
		return err
	})
	return out, err
}

// DiscoverClaims extracts predictions from page text
func (p *OpenAIProvider) DiscoverClaims(ctx context.Context, pageText string) ([]DiscoveredClaim, error) {
	var out []DiscoveredClaim
	err := p.complete(ctx, BuildDiscoveryPrompt(pageText), func(text string) error {
		c, err := ParseDiscoveredClaims(text)
		out = c
		return err
	})
	return out, err
}

// Close is a no-op; the HTTP client holds no resources worth releasing
func (p *OpenAIProvider) Close() error {
	return nil
}

func (p *OpenAIProvider) complete(ctx context.Context, prompt string, accept func(string) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   p.config.maxTokens(),
		Temperature: 0.2,
	}
	if p.jsonMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	var lastErr error
	for attempt := 0; attempt < p.config.attempts(); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: %w", p.name, ctx.Err())
			case <-time.After(p.config.RetryDelay):
			}
		}

		resp, err := p.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			lastErr = fmt.Errorf("%s API error: %w", p.name, err)
			if ctx.Err() != nil {
				return lastErr
			}
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("%w: no choices from %s", ErrMalformedResponse, p.name)
			continue
		}

		text := strings.TrimSpace(resp.Choices[0].Message.Content)
		if err := accept(text); err != nil {
			p.logger.Warn("ai answer rejected",
				zap.String("provider", p.name),
				zap.Error(err),
				zap.String("response_prefix", truncate(text, 200)))
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("%s failed after %d attempts: %w", p.name, p.config.attempts(), lastErr)
}
