package badger

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/stashlabs/stash/core"
	"github.com/stashlabs/stash/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
// It doubles as the vector index: nearest-neighbor queries scan one owner's
// records and score them by dot product, which equals cosine similarity for
// normalized vectors.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) *EmbeddingRepository {
	return &EmbeddingRepository{
		backend: backend,
	}
}

// Close is a no-op; the shared backend owns all resources.
func (r *EmbeddingRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *EmbeddingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Upsert stores or replaces the embedding record for an item.
func (r *EmbeddingRepository) Upsert(ctx context.Context, rec *core.EmbeddingRecord) error {
	if err := core.ValidateEmbeddingRecord(rec); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEmbeddingKey(rec.ItemId)

		// Clean up the old owner index entry if the owner changed
		old, err := r.readRecord(tx, key)
		if err != nil {
			return err
		}
		if old != nil && old.OwnerId != rec.OwnerId {
			if err := tx.Delete(makeEmbeddingOwnerKey(old.OwnerId, old.ItemId)); err != nil {
				return err
			}
		}

		rec.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalEmbeddingRecord(rec)); err != nil {
			return err
		}

		ownerKey := makeEmbeddingOwnerKey(rec.OwnerId, rec.ItemId)
		if err := tx.Set(ownerKey, storage.MarshalID(rec.ItemId)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
}

// Remove deletes the embedding record for an item.
// Removing a record that doesn't exist is not an error.
func (r *EmbeddingRepository) Remove(ctx context.Context, itemID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEmbeddingKey(itemID)

		rec, err := r.readRecord(tx, key)
		if err != nil {
			return err
		}
		if rec == nil {
			return nil
		}

		if err := tx.Delete(makeEmbeddingOwnerKey(rec.OwnerId, rec.ItemId)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
}

// Get retrieves the embedding record for an item.
func (r *EmbeddingRepository) Get(ctx context.Context, itemID core.ID) (*core.EmbeddingRecord, error) {
	var result *core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readRecord(tx, makeEmbeddingKey(itemID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// QueryNearest finds the k records owned by ownerID most similar to the
// given vector. Results are ordered by score descending; ties are broken
// by item ID ascending.
func (r *EmbeddingRepository) QueryNearest(ctx context.Context, ownerID string, vector []float32, k int) ([]*core.SimilarityMatch, error) {
	if ownerID == "" || len(vector) == 0 || k <= 0 {
		return nil, storage.ErrInvalidQuery
	}
	if r.backend.IsClosed() {
		return nil, storage.ErrIndexUnavailable
	}

	var matches []*core.SimilarityMatch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEmbeddingOwnerPrefix(ownerID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var itemID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				itemID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			rec, err := r.readRecord(tx, makeEmbeddingKey(itemID))
			if err != nil {
				return err
			}
			if rec == nil || len(rec.Vector) == 0 {
				continue
			}

			matches = append(matches, &core.SimilarityMatch{
				ItemId: rec.ItemId,
				Score:  float64(dotProduct(vector, rec.Vector)),
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrIndexUnavailable, err)
	}

	// The owner index iterates in item ID order, so a stable sort by score
	// keeps ties ordered by item ID ascending.
	slices.SortStableFunc(matches, func(a, b *core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(matches) > k {
		matches = matches[:k]
	}

	return matches, nil
}

// readRecord reads and unmarshals an embedding record. Returns nil, nil if
// not found.
func (r *EmbeddingRepository) readRecord(tx *badger.Txn, key []byte) (*core.EmbeddingRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var rec *core.EmbeddingRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		rec, unmarshalErr = storage.UnmarshalEmbeddingRecord(val)
		return unmarshalErr
	})
	return rec, err
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
