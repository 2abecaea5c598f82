package refresh

import "errors"

var (
	// ErrInvalidMaxAttempts indicates a retry policy with no attempts.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrIngesterRequired is returned when no ingester is provided.
	ErrIngesterRequired = errors.New("ingester required")

	// ErrNoTopics is returned when a refresher is created without topics.
	ErrNoTopics = errors.New("no topics to refresh")

	// ErrCyclerRequired is returned when a scheduler has nothing to run.
	ErrCyclerRequired = errors.New("cycler required")

	// ErrInvalidInterval indicates a non-positive scheduler interval.
	ErrInvalidInterval = errors.New("scheduler interval must be positive")

	// ErrCycleRunning is returned when a cycle is requested while one is in progress.
	ErrCycleRunning = errors.New("refresh cycle already running")
)
