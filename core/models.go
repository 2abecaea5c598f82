package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier used for index keys.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SourceID returns the deduplication identity of a source URL within a topic.
func SourceID(key TopicKey, source string) ID {
	return IDFromContent("(" + string(key) + "," + source + ")")
}

// TopicKey identifies a tracked topic and the partition holding its knowledge.
type TopicKey string

// String implements fmt.Stringer.
func (k TopicKey) String() string {
	return string(k)
}

// Keyword returns the final "_"-delimited segment of the key, lowercased.
// "race_2025_r08_monaco" yields "monaco".
func (k TopicKey) Keyword() string {
	s := string(k)
	if i := strings.LastIndex(s, "_"); i >= 0 {
		s = s[i+1:]
	}
	return strings.ToLower(s)
}

// Scope classifies what a knowledge entry is about.
type Scope string

const (
	ScopeSeason Scope = "season"
	ScopeTeam   Scope = "team"
	ScopeDriver Scope = "driver"
	ScopeRace   Scope = "race"
)

// ScopeForTopic derives the scope of a topic from the first segment of its key.
// Keys that do not start with a known scope name are season-level.
func ScopeForTopic(key TopicKey) Scope {
	prefix, _, _ := strings.Cut(string(key), "_")
	switch Scope(prefix) {
	case ScopeTeam, ScopeDriver, ScopeRace:
		return Scope(prefix)
	default:
		return ScopeSeason
	}
}

// EntryType classifies the kind of information an entry carries.
type EntryType string

const (
	EntryTypeResult     EntryType = "result"
	EntryTypeNews       EntryType = "news"
	EntryTypeTechnical  EntryType = "technical"
	EntryTypeRegulation EntryType = "regulation"
	EntryTypeIncident   EntryType = "incident"
)

// RawArticle is a fetched news item awaiting summarization.
// It is consumed by ingestion and never persisted as such.
type RawArticle struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"` // Snippet or description
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"` // Zero means "now" at ingestion time
}

// KnowledgeEntry is a summarized fact derived from one ingested article.
// Entries are immutable once appended to a partition.
type KnowledgeEntry struct {
	ID        string    `json:"id" cbor:"1,keyasint"`
	TopicKey  TopicKey  `json:"topicKey" cbor:"2,keyasint"`
	Scope     Scope     `json:"scope" cbor:"3,keyasint"`
	Type      EntryType `json:"type" cbor:"4,keyasint"`
	Summary   string    `json:"summary" cbor:"5,keyasint"`
	Source    string    `json:"source" cbor:"6,keyasint"`    // Origin URL
	Timestamp time.Time `json:"timestamp" cbor:"7,keyasint"` // When the content was published
	CreatedAt time.Time `json:"createdAt" cbor:"8,keyasint"` // When the entry was ingested
}

// PartitionInfo describes a partition without loading its entries.
type PartitionInfo struct {
	TopicKey    TopicKey  `json:"topicKey"`
	Entries     int       `json:"entries"`
	LastUpdated time.Time `json:"lastUpdated"` // Zero if never written
}

// TopicStatus describes a tracked topic together with its partition state.
type TopicStatus struct {
	TopicKey    TopicKey  `json:"topicKey"`
	DisplayName string    `json:"displayName"`
	Entries     int       `json:"entries"`
	LastUpdated time.Time `json:"lastUpdated"`
}
