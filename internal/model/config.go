package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete PAP configuration
type Config struct {
	Remote RemoteConfig `yaml:"remote" mapstructure:"remote"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	AI     AIConfig     `yaml:"ai" mapstructure:"ai"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	HTTP   HTTPConfig   `yaml:"http" mapstructure:"http"`
}

// RemoteConfig configures the hosted database tier
type RemoteConfig struct {
	Backend       string        `yaml:"backend" mapstructure:"backend"`           // firebase, redis
	DatabaseURL   string        `yaml:"database_url" mapstructure:"database_url"` // Firebase RTDB URL
	APIKey        string        `yaml:"api_key" mapstructure:"api_key"`
	Namespace     string        `yaml:"namespace" mapstructure:"namespace"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"` // soft wait for the startup fetch
	WriteTimeout  time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	RedisAddr     string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int           `yaml:"redis_db" mapstructure:"redis_db"`
}

// CacheConfig configures the local cache tier
type CacheConfig struct {
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	Backend   string        `yaml:"backend" mapstructure:"backend"` // disk, badger
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
}

// AIConfig configures the remote scoring service
type AIConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // gemini, openai, ollama, "" (heuristic only)
	Model             string        `yaml:"model" mapstructure:"model"`
	APIKey            string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	MaxTokens         int           `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// HTTPConfig configures the discovery fetcher
type HTTPConfig struct {
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		Remote: RemoteConfig{
			Backend:      "firebase",
			Namespace:    "pap",
			Timeout:      8 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Dir:       filepath.Join(home, ".pap", "cache"),
			Backend:   "disk",
			MemoryTTL: 10 * time.Minute,
		},
		AI: AIConfig{
			Provider:          "",
			Timeout:           12 * time.Second,
			RequestsPerMinute: 15,
			MaxTokens:         2048,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		HTTP: HTTPConfig{
			UserAgent:    "PAP/0.1 (+https://github.com/ppiankov/pap)",
			Timeout:      20 * time.Second,
			MaxBodyBytes: 2_000_000,
		},
	}
}
