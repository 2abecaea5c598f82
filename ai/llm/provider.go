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

package llm

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/pitwall/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/cloudflare"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider implements ai.AIProvider with a single langchaingo model.
type Provider struct {
	summarizer *Summarizer
	answerer   *Answerer
	logger     *slog.Logger
}

// NewProvider creates a provider for the backend named in config.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to backend-specific details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	model, err := newModel(config)
	if err != nil {
		return nil, fmt.Errorf("creating %s model: %w", config.Backend, err)
	}

	return NewProviderWithModel(model, config.Timeout), nil
}

// NewProviderWithModel creates a provider around an existing model.
// Every call made through the provider is bounded by timeout; a
// non-positive timeout falls back to ai.DefaultConfig().Timeout.
func NewProviderWithModel(model llms.Model, timeout time.Duration) ai.AIProvider {
	if timeout <= 0 {
		timeout = ai.DefaultConfig().Timeout
	}
	return &Provider{
		summarizer: newSummarizer(model, timeout),
		answerer:   newAnswerer(model, timeout),
		logger:     slog.Default().With("component", "llm-provider"),
	}
}

// newModel builds the langchaingo client for the configured backend.
func newModel(config *ai.Config) (llms.Model, error) {
	switch config.Backend {
	case ai.BackendOpenAI:
		return openai.New(
			openai.WithBaseURL(config.Host),
			openai.WithToken(config.Token),
			openai.WithModel(config.Model),
		)
	case ai.BackendAnthropic:
		opts := []anthropic.Option{
			anthropic.WithToken(config.Token),
			anthropic.WithModel(config.Model),
		}
		if config.Host != "" {
			opts = append(opts, anthropic.WithBaseURL(config.Host))
		}
		return anthropic.New(opts...)
	case ai.BackendCloudflare:
		opts := []cloudflare.Option{
			cloudflare.WithToken(config.Token),
			cloudflare.WithAccountID(config.AccountID),
			cloudflare.WithModel(config.Model),
		}
		if config.Host != "" {
			opts = append(opts, cloudflare.WithServerURL(config.Host))
		}
		return cloudflare.New(opts...)
	default:
		return nil, fmt.Errorf("unknown backend %q", config.Backend)
	}
}

// Summarizer returns the article summarization service.
func (p *Provider) Summarizer() ai.Summarizer {
	return p.summarizer
}

// Answerer returns the question answering service.
func (p *Provider) Answerer() ai.Answerer {
	return p.answerer
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing llm provider")
	return nil
}
