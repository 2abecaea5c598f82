// Package config loads application settings from a YAML file, a .env file
// and environment variables.
//
// Precedence, lowest first: built-in defaults, the YAML file, environment
// variables. Command line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/pitwall/ai"
	"github.com/poiesic/pitwall/topics"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfigPath      = "PITWALL_CONFIG"
	EnvDataDir         = "PITWALL_DATA_DIR"
	EnvTopicsFile      = "PITWALL_TOPICS_FILE"
	EnvAddr            = "PITWALL_ADDR"
	EnvAllowOrigin     = "PITWALL_ALLOW_ORIGIN"
	EnvAIBackend       = "PITWALL_AI_BACKEND"
	EnvAIHost          = "PITWALL_AI_HOST"
	EnvAIModel         = "PITWALL_AI_MODEL"
	EnvAIToken         = "PITWALL_AI_TOKEN"
	EnvAIAccountID     = "PITWALL_AI_ACCOUNT_ID"
	EnvAITimeout       = "PITWALL_AI_TIMEOUT"
	EnvSerperAPIKey    = "SERPER_API_KEY"
	EnvRefreshEnabled  = "PITWALL_REFRESH_ENABLED"
	EnvRefreshInterval = "PITWALL_REFRESH_INTERVAL"
)

// Config holds all application settings.
type Config struct {
	// DataDir is the Badger database directory.
	DataDir string `yaml:"dataDir"`

	// TopicsFile optionally replaces the built-in topic table.
	TopicsFile string `yaml:"topicsFile"`

	Server    ServerConfig    `yaml:"server"`
	AI        AIConfig        `yaml:"ai"`
	News      NewsConfig      `yaml:"news"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Query     QueryConfig     `yaml:"query"`
	Refresh   RefreshConfig   `yaml:"refresh"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allowOrigins"`
}

// AIConfig selects the language model. See ai.Config.
type AIConfig struct {
	Backend   string        `yaml:"backend"`
	Host      string        `yaml:"host"`
	Model     string        `yaml:"model"`
	Token     string        `yaml:"token"`
	AccountID string        `yaml:"accountId"`
	Timeout   time.Duration `yaml:"timeout"`
}

// NewsConfig configures the Serper news source.
type NewsConfig struct {
	APIKey      string        `yaml:"apiKey"`
	Endpoint    string        `yaml:"endpoint"`
	MaxArticles int           `yaml:"maxArticles"`
	Timeout     time.Duration `yaml:"timeout"`
}

// IngestionConfig tunes the ingestion pipeline.
type IngestionConfig struct {
	Workers     int  `yaml:"workers"`
	Deduplicate bool `yaml:"deduplicate"`
}

// QueryConfig tunes the query engine.
type QueryConfig struct {
	// MaxContext caps the entries handed to the answerer; 0 means all.
	MaxContext int `yaml:"maxContext"`
}

// RefreshConfig controls periodic topic refresh.
type RefreshConfig struct {
	Enabled      bool          `yaml:"enabled"`
	OnStart      bool          `yaml:"onStart"`
	Interval     time.Duration `yaml:"interval"`
	MinDelay     time.Duration `yaml:"minDelay"`
	TopicTimeout time.Duration `yaml:"topicTimeout"`
	MaxAttempts  int           `yaml:"maxAttempts"`
	Workers      int           `yaml:"workers"`
}

// Default returns the built-in configuration.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		DataDir: "./pitwall-data",
		Server: ServerConfig{
			Addr:         ":8080",
			AllowOrigins: []string{"*"},
		},
		AI: AIConfig{
			Backend: aiDefaults.Backend,
			Host:    aiDefaults.Host,
			Model:   aiDefaults.Model,
			Token:   aiDefaults.Token,
			Timeout: aiDefaults.Timeout,
		},
		News: NewsConfig{
			MaxArticles: 10,
			Timeout:     30 * time.Second,
		},
		Ingestion: IngestionConfig{
			Workers:     4,
			Deduplicate: true,
		},
		Refresh: RefreshConfig{
			Enabled:      true,
			Interval:     6 * time.Hour,
			MinDelay:     2 * time.Second,
			TopicTimeout: 2 * time.Minute,
			MaxAttempts:  3,
			Workers:      2,
		},
	}
}

// Load builds the configuration. A .env file in the working directory is
// loaded first if present; existing environment variables win over it. path
// names the YAML file; when empty, PITWALL_CONFIG is consulted, and with
// neither set only defaults and the environment apply.
func Load(path string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: cannot parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given files. Missing files are
// skipped; variables already set in the environment are left alone.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: cannot load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	setString(EnvDataDir, &c.DataDir)
	setString(EnvTopicsFile, &c.TopicsFile)
	setString(EnvAddr, &c.Server.Addr)
	setString(EnvAIBackend, &c.AI.Backend)
	setString(EnvAIHost, &c.AI.Host)
	setString(EnvAIModel, &c.AI.Model)
	setString(EnvAIToken, &c.AI.Token)
	setString(EnvAIAccountID, &c.AI.AccountID)
	setString(EnvSerperAPIKey, &c.News.APIKey)

	if v := os.Getenv(EnvAllowOrigin); v != "" {
		c.Server.AllowOrigins = []string{v}
	}
	if v := os.Getenv(EnvAITimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvAITimeout, err)
		}
		c.AI.Timeout = d
	}
	if v := os.Getenv(EnvRefreshInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvRefreshInterval, err)
		}
		c.Refresh.Interval = d
	}
	if v := os.Getenv(EnvRefreshEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvRefreshEnabled, err)
		}
		c.Refresh.Enabled = enabled
	}
	return nil
}

// Validate checks the settings that every command relies on.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: dataDir is required")
	}
	if c.News.MaxArticles < 1 {
		return fmt.Errorf("config: news.maxArticles must be at least 1, got %d", c.News.MaxArticles)
	}
	if c.Query.MaxContext < 0 {
		return fmt.Errorf("config: query.maxContext must not be negative, got %d", c.Query.MaxContext)
	}
	if c.Refresh.Enabled && c.Refresh.Interval <= 0 {
		return errors.New("config: refresh.interval must be positive when refresh is enabled")
	}
	if c.Refresh.MaxAttempts < 1 {
		return fmt.Errorf("config: refresh.maxAttempts must be at least 1, got %d", c.Refresh.MaxAttempts)
	}
	return c.AIConfig().Validate()
}

// AIConfig converts the AI section into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithBackend(c.AI.Backend),
		ai.WithHost(c.AI.Host),
		ai.WithModel(c.AI.Model),
		ai.WithToken(c.AI.Token),
		ai.WithAccountID(c.AI.AccountID),
		ai.WithTimeout(c.AI.Timeout),
	)
}

// Topics returns the configured topic table, or the built-in one when no
// TopicsFile is set.
func (c *Config) Topics() (*topics.Table, error) {
	if c.TopicsFile == "" {
		return topics.Default(), nil
	}
	return topics.Load(c.TopicsFile)
}
