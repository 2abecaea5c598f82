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

// Package llm implements the ai services on top of langchaingo.
//
// One llms.Model serves both summarization and answering. The backend is
// chosen by ai.Config.Backend:
//
//   - "openai": any OpenAI-compatible chat API (OpenAI, Ollama, LocalAI, vLLM)
//   - "anthropic": the Anthropic Messages API
//   - "cloudflare": Cloudflare Workers AI
//
// # Usage
//
//	provider, err := llm.NewProvider(ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"), // /v1 added automatically
//	    ai.WithModel("llama3.3"),
//	))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
// Tests can drive the services with any llms.Model, including llms/fake:
//
//	provider := llm.NewProviderWithModel(fake.NewFakeLLM(responses), time.Second)
package llm
