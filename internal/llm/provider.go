package llm

import (
	"context"
	"errors"
	"time"

	"github.com/ppiankov/pap/internal/model"
)

var (
	// ErrNotConfigured means the provider lacks a usable key or endpoint
	ErrNotConfigured = errors.New("ai provider not configured")

	// ErrMalformedResponse means the model answered outside the response contract
	ErrMalformedResponse = errors.New("malformed ai response")
)

// Provider is the boundary to a remote scoring model
type Provider interface {
	// Name returns the provider name
	Name() string

	// Analyze scores a claim and returns the checklist, verdicts and evidence
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)

	// ClaimantBackground looks up public background for a person or organisation
	ClaimantBackground(ctx context.Context, name string) (*Background, error)

	// DiscoverClaims extracts public predictions from page text
	DiscoverClaims(ctx context.Context, pageText string) ([]DiscoveredClaim, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool

	Close() error
}

// AnalyzeRequest is the scoring request contract
type AnalyzeRequest struct {
	ClaimText string
	Language  string // "en" or "ne"
}

// AnalyzeResponse is a validated scoring response
type AnalyzeResponse struct {
	VaguenessScore      int                        `json:"vaguenessScore"`
	AnalysisParams      []model.AnalysisParam      `json:"analysisParams"`
	VerificationVectors []model.VerificationVector `json:"verificationVectors"`
	WebEvidence         []model.WebEvidenceLink    `json:"webEvidence"`
	BiasReport          string                     `json:"biasReport,omitempty"`
	Model               string                     `json:"model,omitempty"`
}

// Background is what a claimant lookup returns
type Background struct {
	Bio          string   `json:"bio"`
	Affiliations []string `json:"affiliations"`
	AccuracyInfo string   `json:"accuracyInfo"`
}

// DiscoveredClaim is one prediction found on a page
type DiscoveredClaim struct {
	ClaimantName       string `json:"claimantName"`
	ClaimText          string `json:"claimText"`
	Category           string `json:"category"`
	TargetDateEstimate string `json:"targetDateEstimate"`
}

// Config holds provider configuration
type Config struct {
	// Provider name: "gemini", "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	APIKey string

	// BaseURL for OpenAI-compatible endpoints (Ollama)
	BaseURL string

	// Timeout bounds a single request; the analyzer applies its own race on top
	Timeout time.Duration

	MaxTokens int

	// MaxRetries on transport errors and malformed answers
	MaxRetries int
	RetryDelay time.Duration
}

// ConfigFromModel converts the application config section
func ConfigFromModel(c model.AIConfig) Config {
	return Config{
		Provider:   c.Provider,
		Model:      c.Model,
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		MaxTokens:  c.MaxTokens,
		MaxRetries: 2,
		RetryDelay: 500 * time.Millisecond,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return 2048
	}
	return c.MaxTokens
}

func (c Config) attempts() int {
	if c.MaxRetries < 1 {
		return 1
	}
	return c.MaxRetries
}
