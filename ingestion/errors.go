package ingestion

import "errors"

var (
	// ErrRepositoryRequired is returned when a partition repository is not provided.
	ErrRepositoryRequired = errors.New("partition repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrSourceRequired is returned when Fetch is used on a pipeline without a news source.
	ErrSourceRequired = errors.New("news source required")

	// ErrFetchFailed wraps failures of the news source.
	ErrFetchFailed = errors.New("news fetch failed")
)
