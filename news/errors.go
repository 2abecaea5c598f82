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

package news

import "errors"

var (
	// ErrMissingAPIKey indicates a client was created without credentials.
	ErrMissingAPIKey = errors.New("news api key is required")

	// ErrUpstreamStatus indicates the news API answered with a non-2xx status.
	ErrUpstreamStatus = errors.New("news api returned an error status")

	// ErrEmptyQuery indicates Fetch was called without a search query.
	ErrEmptyQuery = errors.New("news query is empty")
)
