package storage

import (
	"context"
	"time"

	"github.com/stashlabs/stash/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the repository and releases resources.
	Close() error
}

// ItemFilter narrows owner-scoped listings. Zero-valued fields match
// everything.
type ItemFilter struct {
	// ContentType restricts results to one content type when non-zero.
	ContentType core.ContentType

	// Tags restricts results to items carrying all listed tags.
	Tags []string

	// From and To bound CreatedAt as From <= CreatedAt < To.
	// A zero From or To leaves that side unbounded.
	From time.Time
	To   time.Time
}

// ItemRepository provides operations for managing captured items.
type ItemRepository interface {
	Repository

	// AddItems adds one or more items to storage.
	// For items with ID=0, generates new IDs from sequence.
	// An item with a caller-provided ID replaces any existing record
	// under that ID, preserving the original InsertedAt.
	// Sets InsertedAt and UpdatedAt timestamps; a zero CreatedAt
	// defaults to InsertedAt.
	// Returns the items with generated IDs and timestamps populated.
	AddItems(ctx context.Context, items ...*core.Item) ([]*core.Item, error)

	// DeleteItems removes items by their IDs.
	// Also removes associated indices. Does not touch embedding records;
	// delete propagation is owned by the ingestion layer.
	// Returns ErrNotFound if any item doesn't exist.
	DeleteItems(ctx context.Context, ids ...core.ID) error

	// GetItem retrieves a single item by ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, id core.ID) (*core.Item, error)

	// GetItems retrieves multiple items by their IDs.
	// Returns only the items that exist (no error for missing items).
	GetItems(ctx context.Context, ids ...core.ID) ([]*core.Item, error)

	// GetItemsByDateRange retrieves items across all owners within a time
	// range. Returns items where start <= CreatedAt < end, ordered by
	// CreatedAt ascending. Used by batch jobs.
	GetItemsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Item, error)

	// ListByOwner retrieves items belonging to one owner, newest first,
	// narrowed by filter. Returns up to limit items; limit <= 0 means
	// no limit.
	ListByOwner(ctx context.Context, ownerID string, filter ItemFilter, limit int) ([]*core.Item, error)
}

// EmbeddingRepository provides operations for derived embedding records.
// Records are keyed by the source item's ID; at most one record exists
// per item.
type EmbeddingRepository interface {
	Repository

	// Upsert stores or replaces the embedding record for an item.
	// Re-upserting with the same item ID replaces the previous vector.
	Upsert(ctx context.Context, rec *core.EmbeddingRecord) error

	// Remove deletes the embedding record for an item.
	// Removing a record that doesn't exist is not an error.
	Remove(ctx context.Context, itemID core.ID) error

	// Get retrieves the embedding record for an item.
	// Returns ErrNotFound if no record exists.
	Get(ctx context.Context, itemID core.ID) (*core.EmbeddingRecord, error)

	// QueryNearest finds the k records owned by ownerID most similar to
	// the given vector, ordered by score descending with ties broken by
	// item ID ascending. Records belonging to other owners are never
	// candidates. A failure to serve the query returns an error
	// (wrapping ErrIndexUnavailable where the index itself is down),
	// which is distinct from an empty result.
	QueryNearest(ctx context.Context, ownerID string, vector []float32, k int) ([]*core.SimilarityMatch, error)
}

// CheckpointRepository persists batch processing progress.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint for a processor type.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a processor type.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, processorType string) (*core.Checkpoint, error)
}
