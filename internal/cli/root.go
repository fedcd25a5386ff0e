package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/pap/internal/model"
)

// Version is overridden at build time
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	offline bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pap",
	Short: "PAP - Public Accountability Platform for predictions and promises",
	Long: `PAP records predictions and promises made by public figures, scores how
verifiable they are, and tracks whether they came true.

Claims are kept in a local cache and synchronized with a hosted database
when one is configured. Without one, PAP runs in demo mode on seed data.

Scoring uses a configured AI provider and falls back to a local heuristic
when the provider is missing, slow, or broken.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("pap " + Version)
	},
}

// envAliases maps config keys to the variable names older deployments used
var envAliases = map[string][]string{
	"remote.database_url": {"FIREBASE_DATABASE_URL"},
	"remote.api_key":      {"FIREBASE_API_KEY"},
	"remote.redis_addr":   {"REDIS_ADDR"},
	"ai.api_key":          {"GEMINI_API_KEY", "API_KEY", "OPENAI_API_KEY"},
}

// configKeys are every settable key; viper only unmarshals env values for keys it knows
var configKeys = []string{
	"remote.backend", "remote.database_url", "remote.api_key", "remote.namespace",
	"remote.timeout", "remote.write_timeout", "remote.redis_addr", "remote.redis_password", "remote.redis_db",
	"cache.dir", "cache.backend", "cache.memory_ttl",
	"ai.provider", "ai.model", "ai.api_key", "ai.base_url", "ai.timeout", "ai.requests_per_minute", "ai.max_tokens",
	"server.addr",
	"http.user_agent", "http.timeout", "http.max_body_bytes", "http.http_proxy", "http.https_proxy",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.pap/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "skip the remote store and work from the local cache")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".pap"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// PAP_AI_API_KEY, PAP_REMOTE_DATABASE_URL, ...
	viper.SetEnvPrefix("PAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range configKeys {
		names := append([]string{"PAP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, envAliases[key]...)
		_ = viper.BindEnv(append([]string{key}, names...)...)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers flags, env and the config file over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.AI.Provider == "" && cfg.AI.APIKey != "" {
		cfg.AI.Provider = guessProvider()
	}
	return cfg, nil
}

// guessProvider picks a provider from whichever legacy key variable is set
func guessProvider() string {
	if os.Getenv("OPENAI_API_KEY") != "" && os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("API_KEY") == "" {
		return "openai"
	}
	return "gemini"
}

// newLogger returns a development logger with --verbose, otherwise a JSON
// production logger at level
func newLogger(level zapcore.Level) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
