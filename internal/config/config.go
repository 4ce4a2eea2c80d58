// Package config loads intentbot settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all intentbot configuration.
type Config struct {
	Corpus  CorpusConfig  `yaml:"corpus"`
	Model   ModelConfig   `yaml:"model"`
	Reply   ReplyConfig   `yaml:"reply"`
	History HistoryConfig `yaml:"history"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// CorpusConfig locates the intent corpus.
type CorpusConfig struct {
	Path string `yaml:"path"`
	// Watch retrains and swaps the model when the corpus file changes.
	Watch    bool   `yaml:"watch"`
	Debounce string `yaml:"debounce"`
}

// ModelConfig tunes feature extraction and the classifier.
type ModelConfig struct {
	NGramMin     int     `yaml:"ngram_min"`
	NGramMax     int     `yaml:"ngram_max"`
	MinTokenLen  int     `yaml:"min_token_len"`
	Seed         uint64  `yaml:"seed"`
	MaxIter      int     `yaml:"max_iter"`
	LearningRate float64 `yaml:"learning_rate"`
	L2           float64 `yaml:"l2"`
	Tolerance    float64 `yaml:"tolerance"`
}

// ReplyConfig controls response selection.
type ReplyConfig struct {
	Fallback string `yaml:"fallback"`
	// Seed feeds the response picker. Nil draws a fresh seed per process.
	Seed *uint64 `yaml:"seed,omitempty"`
}

// HistoryConfig picks the history backend.
type HistoryConfig struct {
	Backend string `yaml:"backend"` // memory, sqlite
	DSN     string `yaml:"dsn"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Path:     "intents.json",
			Debounce: "250ms",
		},
		Model: ModelConfig{
			NGramMin:     1,
			NGramMax:     4,
			MinTokenLen:  2,
			Seed:         0,
			MaxIter:      10000,
			LearningRate: 0.5,
			L2:           1e-4,
			Tolerance:    1e-5,
		},
		Reply: ReplyConfig{
			Fallback: "I'm not sure how to respond to that.",
		},
		History: HistoryConfig{
			Backend: "memory",
			DSN:     filepath.Join("data", "history.db"),
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "15s",
			WriteTimeout:    "30s",
			ShutdownTimeout: "5s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("INTENTBOT_CORPUS"); v != "" {
		c.Corpus.Path = v
	}
	if v := os.Getenv("INTENTBOT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("INTENTBOT_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("INTENTBOT_SEED: %w", err)
		}
		c.Model.Seed = seed
	}
	if v := os.Getenv("INTENTBOT_HISTORY_DSN"); v != "" {
		c.History.Backend = "sqlite"
		c.History.DSN = v
	}
	if v := os.Getenv("INTENTBOT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Corpus.Path == "" {
		return errors.New("corpus.path is required")
	}
	if c.Model.NGramMin < 1 || c.Model.NGramMax < c.Model.NGramMin {
		return fmt.Errorf("model: invalid n-gram range [%d, %d]", c.Model.NGramMin, c.Model.NGramMax)
	}
	if c.Model.MinTokenLen < 1 {
		return fmt.Errorf("model.min_token_len must be positive, got %d", c.Model.MinTokenLen)
	}
	if c.Model.MaxIter <= 0 {
		return fmt.Errorf("model.max_iter must be positive, got %d", c.Model.MaxIter)
	}
	if c.Model.LearningRate <= 0 {
		return fmt.Errorf("model.learning_rate must be positive, got %g", c.Model.LearningRate)
	}
	if c.Model.L2 < 0 {
		return fmt.Errorf("model.l2 must not be negative, got %g", c.Model.L2)
	}
	switch c.History.Backend {
	case "memory":
	case "sqlite":
		if c.History.DSN == "" {
			return errors.New("history.dsn is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("history.backend %q is not one of memory, sqlite", c.History.Backend)
	}
	for name, v := range map[string]string{
		"corpus.debounce":         c.Corpus.Debounce,
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if _, err := parseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// DebounceDuration parses Corpus.Debounce.
func (c *Config) DebounceDuration() time.Duration { return mustDuration(c.Corpus.Debounce) }

// ReadTimeoutDuration parses Server.ReadTimeout.
func (c *Config) ReadTimeoutDuration() time.Duration { return mustDuration(c.Server.ReadTimeout) }

// WriteTimeoutDuration parses Server.WriteTimeout.
func (c *Config) WriteTimeoutDuration() time.Duration { return mustDuration(c.Server.WriteTimeout) }

// ShutdownTimeoutDuration parses Server.ShutdownTimeout.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(c.Server.ShutdownTimeout)
}

// parseDuration accepts an empty string as zero.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func mustDuration(s string) time.Duration {
	d, _ := parseDuration(s)
	return d
}
