package llm

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{}, zap.NewNop())
	if err != nil || p != nil {
		t.Fatalf("Expected nil provider and nil error, got %v, %v", p, err)
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Provider: "anthropic"}, nil); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestNewProvider_GeminiRequiresValidKey(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "gemini", APIKey: "YOUR_GEMINI_API_KEY_HERE"}, nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestNewProvider_Ollama(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "Ollama"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "ollama" {
		t.Errorf("Expected ollama, got %s", p.Name())
	}
}

func TestValidGeminiKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"", false},
		{"YOUR_GEMINI_API_KEY_HERE", false},
		{"dummy-key-for-error-handling", false},
		{"sk-not-a-gemini-key", false},
		{"AIzaShort", false},
		{"AIzaSyA1234567890abcdefghijklmnopqrstu", true},
		{"  AIzaSyA1234567890abcdefghijklmnopqrstu  ", true},
	}
	for _, tt := range tests {
		if got := ValidGeminiKey(tt.key); got != tt.want {
			t.Errorf("ValidGeminiKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestConfigured(t *testing.T) {
	tests := []struct {
		cfg  Config
		want bool
	}{
		{Config{}, false},
		{Config{Provider: "gemini", APIKey: "bad"}, false},
		{Config{Provider: "gemini", APIKey: "AIzaSyA1234567890abcdefghijklmnopqrstu"}, true},
		{Config{Provider: "openai", APIKey: "sk-abc"}, true},
		{Config{Provider: "openai"}, false},
		{Config{Provider: "ollama"}, true},
		{Config{Provider: "mystery", APIKey: "x"}, false},
	}
	for _, tt := range tests {
		if got := Configured(tt.cfg); got != tt.want {
			t.Errorf("Configured(%+v) = %v, want %v", tt.cfg, got, tt.want)
		}
	}
}
