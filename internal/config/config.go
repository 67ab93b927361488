package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/llm"
)

// Config holds all configuration of the jarvis interpreter.
// It is loaded from ~/.jarvis/config.yaml and can be overridden by environment variables.
type Config struct {
	NLP     NLPConfig     `mapstructure:"nlp" yaml:"nlp"`
	Insight InsightConfig `mapstructure:"insight" yaml:"insight"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	Batch   BatchConfig   `mapstructure:"batch" yaml:"batch"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// NLPConfig tunes the interpretation pipeline. Values are read once at
// startup.
type NLPConfig struct {
	// FuzzyThreshold is the minimum similarity for an approximate lexicon match.
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold" yaml:"fuzzy_threshold"`
	// ConfidenceThreshold is the action confidence at which an interpretation is trusted.
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
	// MaxPatterns caps the size of the intent pattern table.
	MaxPatterns int `mapstructure:"max_patterns" yaml:"max_patterns"`
}

// InsightConfig configures the optional LLM commentary.
type InsightConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Mode is "off", "always" or "low_confidence".
	Mode string `mapstructure:"mode" yaml:"mode"`
	// Provider is "ollama" or "openai".
	Provider string        `mapstructure:"provider" yaml:"provider"`
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Model    string        `mapstructure:"model" yaml:"model,omitempty"`
	APIKey   string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ToProviderConfig converts InsightConfig into an llm provider configuration.
func (c InsightConfig) ToProviderConfig() *llm.Config {
	pc := llm.DefaultConfig(c.Provider)
	if c.Endpoint != "" {
		pc.Endpoint = c.Endpoint
	}
	if c.Model != "" {
		pc.Model = c.Model
	}
	if c.APIKey != "" {
		pc.APIKey = c.APIKey
	}
	if c.Timeout > pc.Timeout {
		pc.Timeout = c.Timeout
	}
	return pc
}

// HistoryConfig configures the interpretation history database.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// DBPath is the path to the SQLite history database.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
	// Retention is the number of most recent records kept.
	Retention int `mapstructure:"retention" yaml:"retention"`
}

// BatchConfig configures batch interpretation.
type BatchConfig struct {
	// Concurrency bounds how many commands are interpreted at once.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// LoggingConfig contains configuration for application logging.
type LoggingConfig struct {
	// Level is the log level ("debug", "info", "warn", "error")
	Level string `mapstructure:"level" yaml:"level"`
	// File is the path to the log file. Empty logs to stderr.
	File string `mapstructure:"file" yaml:"file"`
}

// Default returns the configuration written on first use.
func Default() *Config {
	return &Config{
		NLP: NLPConfig{
			FuzzyThreshold:      0.8,
			ConfidenceThreshold: 0.7,
			MaxPatterns:         100,
		},
		Insight: InsightConfig{
			Enabled:  false,
			Mode:     "off",
			Provider: llm.ProviderOllama,
			Endpoint: "http://127.0.0.1:11434",
			Model:    "llama3",
			Timeout:  5 * time.Second,
		},
		History: HistoryConfig{
			Enabled:   true,
			DBPath:    "~/.jarvis/history.db",
			Retention: 1000,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.jarvis/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".jarvis", "config.yaml"), nil
}

// Load reads configuration from the default location.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads configuration from a specific file path and merges with
// environment variables. If the file doesn't exist, it creates one with default values.
func LoadFromPath(path string) (*Config, error) {
	path = expandPath(path)

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeConfigFile(path, Default()); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Example: JARVIS_INSIGHT_MODE=always
	v.SetEnvPrefix("JARVIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.History.DBPath = expandPath(cfg.History.DBPath)
	cfg.Logging.File = expandPath(cfg.Logging.File)

	return &cfg, nil
}

// SaveToPath writes the current configuration to a specific file path.
func (c *Config) SaveToPath(path string) error {
	path = expandPath(path)

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return writeConfigFile(path, c)
}

// Validate checks the configuration for out-of-range values and unknown names.
func (c *Config) Validate() error {
	if c.NLP.FuzzyThreshold <= 0 || c.NLP.FuzzyThreshold > 1 {
		return fmt.Errorf("nlp.fuzzy_threshold must be in (0, 1], got %v", c.NLP.FuzzyThreshold)
	}
	if c.NLP.ConfidenceThreshold <= 0 || c.NLP.ConfidenceThreshold > 1 {
		return fmt.Errorf("nlp.confidence_threshold must be in (0, 1], got %v", c.NLP.ConfidenceThreshold)
	}
	if c.NLP.MaxPatterns <= 0 {
		return fmt.Errorf("nlp.max_patterns must be positive")
	}

	validModes := map[string]bool{"off": true, "always": true, "low_confidence": true}
	if !validModes[c.Insight.Mode] {
		return fmt.Errorf("invalid insight mode '%s', must be one of: off, always, low_confidence", c.Insight.Mode)
	}
	if c.Insight.Provider != llm.ProviderOllama && c.Insight.Provider != llm.ProviderOpenAI {
		return fmt.Errorf("invalid insight provider '%s', must be 'ollama' or 'openai'", c.Insight.Provider)
	}
	if c.Insight.Timeout <= 0 {
		return fmt.Errorf("insight.timeout must be positive")
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}
	if c.History.Retention < 0 {
		return fmt.Errorf("history.retention cannot be negative")
	}

	if c.Batch.Concurrency <= 0 {
		return fmt.Errorf("batch.concurrency must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}

	return nil
}

// InsightActive reports whether insight is enabled with a mode other than off.
func (c *Config) InsightActive() bool {
	return c.Insight.Enabled && c.Insight.Mode != "off"
}

// writeConfigFile writes a Config struct to a YAML file.
// Uses gopkg.in/yaml.v3 directly to ensure proper tag-based serialization.
func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandPath expands ~ to the user's home directory in a path string.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
