// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Supported model backends.
const (
	// BackendOpenAI covers any OpenAI-compatible chat API.
	BackendOpenAI = "openai"

	// BackendAnthropic uses the Anthropic Messages API.
	BackendAnthropic = "anthropic"

	// BackendCloudflare uses Cloudflare Workers AI.
	BackendCloudflare = "cloudflare"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Backend selects the model API: "openai", "anthropic" or "cloudflare".
	// Default: "openai"
	Backend string

	// Host is the base URL of the model API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server.
	// Empty means the backend's public endpoint (anthropic, cloudflare only).
	Host string

	// Model is the model identifier used for both summaries and answers.
	// Example: "llama3.3", "claude-3-5-haiku-latest", "@cf/meta/llama-3.3-70b-instruct-fp8-fast"
	Model string

	// Token is the API key. Local OpenAI-compatible servers accept any value.
	Token string

	// AccountID is the Cloudflare account, required by the cloudflare backend.
	AccountID string

	// Timeout bounds every individual model call.
	// Default: 60s
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend sets the model backend.
func WithBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithHost sets the model API base URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithToken sets the API key.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithAccountID sets the Cloudflare account ID.
func WithAccountID(id string) ConfigOption {
	return func(c *Config) {
		c.AccountID = id
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// DefaultConfig returns a Config with sensible defaults for a local OpenAI-compatible service.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendOpenAI,
		Host:    "http://localhost:11434/v1",
		Model:   "llama3.3",
		Token:   "none",
		Timeout: 60 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBackend("cloudflare"),
//	    WithAccountID(os.Getenv("CF_ACCOUNT_ID")),
//	    WithToken(os.Getenv("CF_API_TOKEN")),
//	    WithModel("@cf/meta/llama-3.3-70b-instruct-fp8-fast"),
//	    WithHost(""),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// Backend names are lowercased. For the openai backend the /v1 suffix is
// added to Host if missing, which is required by most OpenAI-compatible
// APIs (Ollama, LocalAI, vLLM, etc), and an empty Token becomes "none".
func (c *Config) Normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = BackendOpenAI
	}
	if c.Backend != BackendOpenAI {
		return
	}
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
	if c.Token == "" {
		c.Token = "none"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.Timeout <= 0 {
		return errors.New("ai config: Timeout must be positive")
	}
	if c.Host != "" {
		if _, err := url.Parse(c.Host); err != nil {
			return fmt.Errorf("ai config: invalid Host: %w", err)
		}
	}

	switch c.Backend {
	case BackendOpenAI:
		if c.Host == "" {
			return errors.New("ai config: Host is required for the openai backend")
		}
	case BackendAnthropic:
		if c.Token == "" {
			return errors.New("ai config: Token is required for the anthropic backend")
		}
	case BackendCloudflare:
		if c.Token == "" {
			return errors.New("ai config: Token is required for the cloudflare backend")
		}
		if c.AccountID == "" {
			return errors.New("ai config: AccountID is required for the cloudflare backend")
		}
	default:
		return fmt.Errorf("ai config: unknown backend %q", c.Backend)
	}
	return nil
}
