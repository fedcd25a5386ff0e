package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.0-flash"

var geminiKeyRe = regexp.MustCompile(`^AIza[0-9A-Za-z_-]{20,}$`)

// ValidGeminiKey rejects empty, placeholder and malformed keys
func ValidGeminiKey(key string) bool {
	key = strings.TrimSpace(key)
	switch key {
	case "", "YOUR_GEMINI_API_KEY_HERE", "dummy-key-for-error-handling":
		return false
	}
	return geminiKeyRe.MatchString(key)
}

// GeminiProvider implements Provider on the Gemini API
type GeminiProvider struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	config    Config
	logger    *zap.Logger
}

// NewGeminiProvider creates the client once; callers own Close
func NewGeminiProvider(ctx context.Context, config Config, logger *zap.Logger, opts ...option.ClientOption) (*GeminiProvider, error) {
	if !ValidGeminiKey(config.APIKey) {
		return nil, fmt.Errorf("gemini: %w", ErrNotConfigured)
	}

	modelName := config.Model
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	opts = append([]option.ClientOption{option.WithAPIKey(config.APIKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemInstruction)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr[float32](0.2),
		TopP:            genai.Ptr[float32](0.9),
		MaxOutputTokens: genai.Ptr(int32(config.maxTokens())),
	}
	model.ResponseMIMEType = "application/json"

	logger.Info("gemini provider initialized", zap.String("model", modelName))

	return &GeminiProvider{
		client:    client,
		model:     model,
		modelName: modelName,
		config:    config,
		logger:    logger,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable fetches model metadata as a cheap round trip
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()
	if _, err := p.model.Info(ctx); err != nil {
		p.logger.Warn("gemini availability check failed", zap.Error(err))
		return false
	}
	return true
}

// Analyze scores a claim
func (p *GeminiProvider) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	var out *AnalyzeResponse
	err := p.generate(ctx, BuildAnalyzePrompt(req), func(text string) error {
		r, err := ParseAnalyzeResponse(text)
		if err != nil {
			return err
		}
		r.Model = p.modelName
		out = r
		return nil
	})
	return out, err
}

// ClaimantBackground looks up a claimant profile
func (p *GeminiProvider) ClaimantBackground(ctx context.Context, name string) (*Background, error) {
	var out *Background
	err := p.generate(ctx, BuildBackgroundPrompt(name), func(text string) error {
		b, err := ParseBackground(text)
		out = b
		return err
	})
	return out, err
}

// DiscoverClaims extracts predictions from page text
func (p *GeminiProvider) DiscoverClaims(ctx context.Context, pageText string) ([]DiscoveredClaim, error) {
	var out []DiscoveredClaim
	err := p.generate(ctx, BuildDiscoveryPrompt(pageText), func(text string) error {
		c, err := ParseDiscoveredClaims(text)
		out = c
		return err
	})
	return out, err
}

// Close closes the client
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// generate sends prompt and hands the text answer to accept, retrying on
// transport errors and on answers accept rejects
func (p *GeminiProvider) generate(ctx context.Context, prompt string, accept func(string) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < p.config.attempts(); attempt++ {
		if attempt > 0 {
			p.logger.Warn("retrying gemini request", zap.Int("attempt", attempt+1), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return fmt.Errorf("gemini: %w", ctx.Err())
			case <-time.After(p.config.RetryDelay):
			}
		}

		resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = fmt.Errorf("gemini API error: %w", err)
			if ctx.Err() != nil {
				return lastErr
			}
			continue
		}

		text := responseText(resp)
		if text == "" {
			lastErr = fmt.Errorf("%w: empty response from gemini", ErrMalformedResponse)
			continue
		}

		if err := accept(text); err != nil {
			p.logger.Warn("gemini answer rejected",
				zap.Error(err),
				zap.String("response_prefix", truncate(text, 200)),
				zap.Int("attempt", attempt+1))
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("gemini failed after %d attempts: %w", p.config.attempts(), lastErr)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
