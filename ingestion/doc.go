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

// Package ingestion turns fetched news articles into knowledge entries.
//
// A Pipeline fetches articles for one topic from a news.Source, drops
// articles the partition already holds, summarizes the rest concurrently on
// a worker pool and appends the resulting entries to the topic's partition
// in a single atomic write.
//
// # Usage
//
//	pipeline, err := ingestion.NewPipeline(repo, provider,
//	    ingestion.WithSource(serper),
//	    ingestion.WithTopics(table),
//	    ingestion.WithPoolSize(4),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pipeline.Release()
//
//	added, err := pipeline.Ingest(ctx, "team_ferrari")
//
// Callers that already hold articles skip the fetch:
//
//	added, err := pipeline.IngestArticles(ctx, "team_ferrari", articles)
//
// # Failure Handling
//
// A failed or empty summary never drops an article: the entry is stored
// with the SummaryUnavailable text. A failed fetch returns ErrFetchFailed
// without touching the store. Store failures are returned unchanged.
//
// # Concurrency
//
// Summaries are produced before the partition is locked, so a slow model
// never blocks readers of the partition. Entry order always matches the
// order of the input articles.
package ingestion
