package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ContentType classifies a captured item.
type ContentType int

const (
	// ContentTypeArticle represents a saved article or blog post.
	ContentTypeArticle ContentType = iota + 1
	// ContentTypeVideo represents a saved video or clip.
	ContentTypeVideo
	// ContentTypeProduct represents a saved product page.
	ContentTypeProduct
	// ContentTypeNote represents a free-form note.
	ContentTypeNote
	// ContentTypeTodo represents a task or todo entry.
	ContentTypeTodo
)

// String returns the canonical lowercase name of the content type.
func (t ContentType) String() string {
	switch t {
	case ContentTypeArticle:
		return "article"
	case ContentTypeVideo:
		return "video"
	case ContentTypeProduct:
		return "product"
	case ContentTypeNote:
		return "note"
	case ContentTypeTodo:
		return "todo"
	default:
		return "unknown"
	}
}

// ContentTypeFromString parses a canonical content type name.
// Returns 0 and false for names outside the closed vocabulary.
func ContentTypeFromString(s string) (ContentType, bool) {
	switch s {
	case "article":
		return ContentTypeArticle, true
	case "video":
		return ContentTypeVideo, true
	case "product":
		return ContentTypeProduct, true
	case "note":
		return ContentTypeNote, true
	case "todo":
		return ContentTypeTodo, true
	default:
		return 0, false
	}
}

// Item represents one captured piece of content owned by a single account.
// Items are immutable once created except for deletion.
type Item struct {
	Id          ID
	OwnerId     string
	Title       string
	Body        string // Optional longer text (page excerpt, note body)
	SourceURL   string // Optional origin URL
	ContentType ContentType
	Tags        []string  // Free-form tags, treated as a set for filtering
	CreatedAt   time.Time // When the content was captured
	InsertedAt  time.Time // When the record was inserted into the database
	UpdatedAt   time.Time // When the record was last updated
}

// EmbeddingRecord is the derived vector artifact for an Item.
// It may be absent when embedding generation has not run yet or failed.
// The owner id always matches the source item's owner.
type EmbeddingRecord struct {
	ItemId    ID
	OwnerId   string
	Vector    []float32
	UpdatedAt time.Time
}

// Checkpoint records batch processing progress for a background processor,
// allowing interrupted runs to resume from the last processed item.
type Checkpoint struct {
	ProcessorType   string
	LastProcessedId ID
	UpdatedAt       time.Time
}

// SimilarityMatch represents an item match from vector similarity search.
type SimilarityMatch struct {
	ItemId ID
	Score  float64
}

// ScoredItem pairs an item with a relevance score in [0,1] and a
// human-readable match reason. Created per query, never persisted.
type ScoredItem struct {
	Item   *Item
	Score  float64
	Reason string
}
