// Package config provides application settings loaded from a config file,
// environment variables and command-line flags.
//
// Settings are created via Load() which handles:
// - Config file discovery (./config.yaml, ~/.config/gptcmd/config.yaml)
// - GPTCMD_-prefixed environment overrides
// - Default value application and validation
// - Provider-specific model and endpoint lookup

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/richinex/gptcmd/llm"
)

// AppName names the config directory and the environment prefix.
const AppName = "gptcmd"

// Settings holds all application configuration.
type Settings struct {
	// Provider is the provider chosen up front; empty means prompt.
	Provider        string            `mapstructure:"provider"`
	DefaultProvider string            `mapstructure:"default_provider"`
	SystemPrompt    string            `mapstructure:"system_prompt"`
	LLM             LLMConfig         `mapstructure:"llm"`
	Models          map[string]string `mapstructure:"models"`
	BaseURLs        map[string]string `mapstructure:"base_urls"`
	History         HistoryConfig     `mapstructure:"history"`
	Render          RenderConfig      `mapstructure:"render"`
	Log             LogConfig         `mapstructure:"log"`
	Metrics         MetricsConfig     `mapstructure:"metrics"`
	NoColor         bool              `mapstructure:"no_color"`
	Verbose         bool              `mapstructure:"verbose"`
	Stats           bool              `mapstructure:"stats"`
}

// LLMConfig holds request parameters shared by every provider.
type LLMConfig struct {
	MaxTokens   uint32  `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// HistoryConfig selects where input history is persisted.
type HistoryConfig struct {
	File     string `mapstructure:"file"`
	DB       string `mapstructure:"db"`
	Limit    int    `mapstructure:"limit"`
	Disabled bool   `mapstructure:"disabled"`
}

// RenderConfig controls response display.
type RenderConfig struct {
	Style string `mapstructure:"style"`
	Width int    `mapstructure:"width"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig controls the metrics dump written at exit.
type MetricsConfig struct {
	File string `mapstructure:"file"`
}

// InitViper initializes Viper with config paths, env binding and defaults.
func InitViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := ConfigDir(); err == nil {
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "")
	v.SetDefault("default_provider", llm.DefaultProviderType.String())
	v.SetDefault("system_prompt", llm.DefaultSystemPrompt)

	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.temperature", 0.7)

	// Per-provider keys are registered so GPTCMD_MODELS_<P> and
	// GPTCMD_BASE_URLS_<P> are picked up by Unmarshal.
	for _, p := range llm.ProviderTypes() {
		v.SetDefault("models."+p.String(), p.DefaultModel())
		v.SetDefault("base_urls."+p.String(), p.DefaultBaseURL())
	}

	v.SetDefault("history.file", DefaultHistoryPath())
	v.SetDefault("history.db", "")
	v.SetDefault("history.limit", 1000)
	v.SetDefault("history.disabled", false)

	v.SetDefault("render.style", "dark")
	v.SetDefault("render.width", 100)

	v.SetDefault("log.level", "warn")
	v.SetDefault("metrics.file", "")
	v.SetDefault("no_color", false)
	v.SetDefault("verbose", false)
	v.SetDefault("stats", false)
}

// Load reads the configuration from file and environment and validates it.
// A missing config file is not an error; an explicitly named one is.
func Load(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		s.NoColor = true
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) validate() error {
	if _, err := llm.ParseProviderType(s.DefaultProvider); err != nil {
		return fmt.Errorf("invalid default_provider: %w", err)
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 2 {
		return fmt.Errorf("invalid value for llm.temperature: %v (want 0..2)", s.LLM.Temperature)
	}
	if s.History.Limit < 0 {
		return fmt.Errorf("invalid value for history.limit: %d", s.History.Limit)
	}
	if s.Render.Width <= 0 {
		return fmt.Errorf("invalid value for render.width: %d", s.Render.Width)
	}
	if _, err := parseLevel(s.Log.Level); err != nil {
		return err
	}
	return nil
}

// BindFlags binds the persistent CLI flags to Viper keys.
func BindFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.StringP("provider", "p", "", "Provider to use (openai, perplexity, deepseek, anthropic, gemini); prompts when empty")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.Bool("no-color", false, "Disable colour and Markdown rendering")
	flags.String("history-file", "", "History file (default ~/.gptcmd_history)")
	flags.String("history-db", "", "Store history in this SQLite database instead of a flat file")
	flags.Bool("no-history", false, "Do not load or save input history")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file at exit")
	flags.Bool("stats", false, "Print a usage summary at exit")

	v.BindPFlag("provider", flags.Lookup("provider"))
	v.BindPFlag("verbose", flags.Lookup("verbose"))
	v.BindPFlag("no_color", flags.Lookup("no-color"))
	v.BindPFlag("history.file", flags.Lookup("history-file"))
	v.BindPFlag("history.db", flags.Lookup("history-db"))
	v.BindPFlag("history.disabled", flags.Lookup("no-history"))
	v.BindPFlag("metrics.file", flags.Lookup("metrics-file"))
	v.BindPFlag("stats", flags.Lookup("stats"))
}

// ModelFor returns the model for a provider. <PROVIDER>_MODEL in the
// environment wins over the config file.
func (s *Settings) ModelFor(p llm.ProviderType) string {
	if val := os.Getenv(strings.ToUpper(p.String()) + "_MODEL"); val != "" {
		return val
	}
	if val := s.Models[p.String()]; val != "" {
		return val
	}
	return p.DefaultModel()
}

// BaseURLFor returns the endpoint override for a provider, or "" for the
// provider's own default.
func (s *Settings) BaseURLFor(p llm.ProviderType) string {
	if val := os.Getenv(strings.ToUpper(p.String()) + "_BASE_URL"); val != "" {
		return val
	}
	return s.BaseURLs[p.String()]
}

// Fallback returns the provider used when selection input matches nothing.
func (s *Settings) Fallback() llm.ProviderType {
	p, err := llm.ParseProviderType(s.DefaultProvider)
	if err != nil {
		return llm.DefaultProviderType
	}
	return p
}

// LogLevel returns the slog level; Verbose forces debug.
func (s *Settings) LogLevel() slog.Level {
	if s.Verbose {
		return slog.LevelDebug
	}
	level, err := parseLevel(s.Log.Level)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid value for log.level: %q", s)
	}
	return level, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	p, err := llm.ParseProviderType(provider)
	if err != nil {
		return "", err
	}

	key := strings.TrimSpace(os.Getenv(p.EnvVar()))
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", p.EnvVar())
	}
	return key, nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	types := llm.ProviderTypes()
	result := make([]string, 0, len(types))
	for _, p := range types {
		result = append(result, p.String())
	}
	return result
}

// ConfigDir returns ~/.config/gptcmd.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DefaultHistoryPath returns ~/.gptcmd_history, or a file in the working
// directory when the home directory cannot be determined.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName + "_history"
	}
	return filepath.Join(home, "."+AppName+"_history")
}
