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

// Package ai provides abstractions for the language-model services used by pitwall.
//
// Two capabilities are needed:
//
//   - Summarizer: condenses one news article into a short factual paragraph
//   - Answerer: answers a question strictly from supplied knowledge entries
//
// AIProvider bundles both behind one configuration and lifecycle.
//
// # Implementation Packages
//
//   - ai/llm: production implementation on langchaingo, with openai,
//     anthropic and cloudflare backends
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors in ai/llm return interface types. The mocks return
// concrete types so tests can inject behaviour and read call counts:
//
//	summ := mock.NewMockSummarizer()
//	summ.SummarizeFunc = func(ctx context.Context, a core.RawArticle) (string, error) { ... }
//	count := summ.CallCount()
//
// # Usage Example
//
//	provider, err := llm.NewProvider(ai.NewConfig(ai.WithModel("llama3.3")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	summary, err := provider.Summarizer().Summarize(ctx, article)
//	answer, err := provider.Answerer().Answer(ctx, "How is Ferrari doing?", entries)
//
// Every model call is bounded by Config.Timeout.
package ai
