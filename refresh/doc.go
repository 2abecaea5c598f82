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

// Package refresh keeps topic partitions current by periodically pulling
// news for every tracked topic.
//
// A Refresher runs one cycle over all topics: fetches are paced by a rate
// limiter and retried with exponential backoff inside a per-topic timeout,
// and each fetched batch is summarized and stored on a worker pool so a slow
// model never delays the next fetch. A failing topic is logged and recorded
// in the cycle Report; it never stops the others.
//
// A Scheduler drives cycles on a fixed interval. Ticks that arrive while a
// cycle is still running are skipped.
//
// # Usage
//
//	refresher, err := refresh.NewRefresher(pipeline, table.Keys(),
//	    refresh.WithMinDelay(2*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer refresher.Release()
//
//	report, err := refresher.RefreshAll(ctx)
//
//	scheduler := refresh.NewScheduler(refresher, time.Hour)
//	go scheduler.Run(ctx)
package refresh
