package topics

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/poiesic/pitwall/core"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTable []byte

// Topic is a tracked subject and the vocabulary used to recognize it.
type Topic struct {
	Key         core.TopicKey `yaml:"key"`
	DisplayName string        `yaml:"displayName"`
	Aliases     []string      `yaml:"aliases"`
	// Query overrides the news search string derived from the key.
	Query string `yaml:"query"`
}

// Name returns the display name, falling back to the key.
func (t Topic) Name() string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return string(t.Key)
}

// Table is the immutable set of tracked topics in declared order.
// A Table is safe for concurrent use because nothing mutates it after construction.
type Table struct {
	topics     []Topic
	index      map[core.TopicKey]int
	defaultKey core.TopicKey
}

type tableFile struct {
	Default core.TopicKey `yaml:"default"`
	Topics  []Topic       `yaml:"topics"`
}

// NewTable builds a table from topics in declared order.
// Aliases are lowercased and trimmed; blank aliases are dropped.
func NewTable(defaultKey core.TopicKey, topics ...Topic) (*Table, error) {
	if len(topics) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{
		topics:     make([]Topic, 0, len(topics)),
		index:      make(map[core.TopicKey]int, len(topics)),
		defaultKey: defaultKey,
	}
	for _, topic := range topics {
		if err := core.ValidateTopicKey(topic.Key); err != nil {
			return nil, err
		}
		if _, dup := t.index[topic.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTopic, topic.Key)
		}

		aliases := make([]string, 0, len(topic.Aliases))
		for _, alias := range topic.Aliases {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if alias != "" {
				aliases = append(aliases, alias)
			}
		}
		topic.Aliases = aliases

		t.index[topic.Key] = len(t.topics)
		t.topics = append(t.topics, topic)
	}

	if _, ok := t.index[defaultKey]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDefault, defaultKey)
	}
	return t, nil
}

// Parse builds a table from its YAML representation.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing topic table: %w", err)
	}
	return NewTable(f.Default, f.Topics...)
}

// Load reads a YAML topic table from disk.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Default returns the built-in 2025 season table.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("built-in topic table is invalid: %v", err))
	}
	return t
}

// Keys returns the tracked topic keys in declared order.
func (t *Table) Keys() []core.TopicKey {
	keys := make([]core.TopicKey, len(t.topics))
	for i, topic := range t.topics {
		keys[i] = topic.Key
	}
	return keys
}

// Topics returns a copy of the topics in declared order.
func (t *Table) Topics() []Topic {
	out := make([]Topic, len(t.topics))
	for i, topic := range t.topics {
		topic.Aliases = slices.Clone(topic.Aliases)
		out[i] = topic
	}
	return out
}

// Lookup returns the topic for key.
func (t *Table) Lookup(key core.TopicKey) (Topic, bool) {
	i, ok := t.index[key]
	if !ok {
		return Topic{}, false
	}
	return t.topics[i], true
}

// Contains reports whether key is tracked.
func (t *Table) Contains(key core.TopicKey) bool {
	_, ok := t.index[key]
	return ok
}

// DefaultKey returns the topic used when nothing else matches.
func (t *Table) DefaultKey() core.TopicKey {
	return t.defaultKey
}

// Len returns the number of tracked topics.
func (t *Table) Len() int {
	return len(t.topics)
}
