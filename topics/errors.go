package topics

import "errors"

var (
	// ErrEmptyTable is returned when a table declares no topics.
	ErrEmptyTable = errors.New("topic table is empty")

	// ErrDuplicateTopic is returned when a key is declared twice.
	ErrDuplicateTopic = errors.New("duplicate topic key")

	// ErrUnknownDefault is returned when the default key is not a declared topic.
	ErrUnknownDefault = errors.New("default topic is not tracked")

	// ErrUnknownTopic is returned when a key is not in the topic table.
	ErrUnknownTopic = errors.New("unknown topic")

	// ErrTableRequired is returned when a router is created without a table.
	ErrTableRequired = errors.New("topic table required")
)
