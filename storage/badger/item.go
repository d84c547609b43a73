package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/stashlabs/stash/core"
	"github.com/stashlabs/stash/storage"
)

// ItemRepository implements storage.ItemRepository for BadgerDB.
type ItemRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(backend *Backend) (*ItemRepository, error) {
	idSeq, err := backend.GetSequence(itemIDSeq)
	if err != nil {
		return nil, err
	}

	return &ItemRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ItemRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ItemRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddItems adds one or more items to storage.
func (r *ItemRepository) AddItems(ctx context.Context, items ...*core.Item) ([]*core.Item, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			var existing *core.Item
			if item.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				item.Id = core.ID(nextID)
			} else {
				// Caller-provided IDs may replace an earlier record, in
				// which case the old index entries must go
				var err error
				existing, err = r.readItem(tx, makeItemKey(item.Id))
				if err != nil {
					return err
				}
			}

			// Stamps truncate to microseconds, the precision of the
			// stored encoding and the index keys
			now := time.Now().UTC().Truncate(time.Microsecond)
			item.InsertedAt = now
			item.UpdatedAt = now
			item.CreatedAt = item.CreatedAt.Truncate(time.Microsecond)
			if item.CreatedAt.IsZero() {
				item.CreatedAt = now
			}

			if existing != nil {
				item.InsertedAt = existing.InsertedAt
				if !existing.CreatedAt.Equal(item.CreatedAt) || existing.OwnerId != item.OwnerId {
					oldOwnerKey := makeItemOwnerKey(existing.OwnerId, existing.CreatedAt, existing.Id)
					if err := tx.Delete(oldOwnerKey); err != nil {
						return err
					}
					oldDateKey := makeItemDateKey(existing.CreatedAt, existing.Id)
					if err := tx.Delete(oldDateKey); err != nil {
						return err
					}
				}
			}

			// Store primary record
			key := makeItemKey(item.Id)
			value := storage.MarshalItem(item)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update owner index
			ownerKey := makeItemOwnerKey(item.OwnerId, item.CreatedAt, item.Id)
			if err := tx.Set(ownerKey, storage.MarshalID(item.Id)); err != nil {
				return err
			}

			// Update global date index
			dateKey := makeItemDateKey(item.CreatedAt, item.Id)
			if err := tx.Set(dateKey, storage.MarshalID(item.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// DeleteItems removes items by their IDs.
func (r *ItemRepository) DeleteItems(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeItemKey(id)

			// Read record to get metadata for index cleanup
			item, err := r.readItem(tx, key)
			if err != nil {
				return err
			}
			if item == nil {
				return storage.ErrNotFound
			}

			// Delete from owner index
			ownerKey := makeItemOwnerKey(item.OwnerId, item.CreatedAt, item.Id)
			if err := tx.Delete(ownerKey); err != nil {
				return err
			}

			// Delete from global date index
			dateKey := makeItemDateKey(item.CreatedAt, item.Id)
			if err := tx.Delete(dateKey); err != nil {
				return err
			}

			// Delete primary record
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetItem retrieves a single item by ID.
func (r *ItemRepository) GetItem(ctx context.Context, id core.ID) (*core.Item, error) {
	var result *core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeItemKey(id)
		var err error
		result, err = r.readItem(tx, key)
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

// GetItems retrieves multiple items by their IDs.
func (r *ItemRepository) GetItems(ctx context.Context, ids ...core.ID) ([]*core.Item, error) {
	var result []*core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeItemKey(id)
			item, err := r.readItem(tx, key)
			if err != nil {
				return err
			}
			if item != nil {
				result = append(result, item)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetItemsByDateRange retrieves items across all owners within a time range.
func (r *ItemRepository) GetItemsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Item, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialItemDateKey(start)
		endKey := makePartialItemDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key, endKey) > 0 {
				break
			}

			// Read the ID from the index
			var itemID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				itemID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full record
			item, err := r.readItem(tx, makeItemKey(itemID))
			if err != nil {
				return err
			}
			if item != nil {
				results = append(results, item)
			}
		}
		return nil
	}, false)

	return results, err
}

// ListByOwner retrieves items belonging to one owner, newest first.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID string, filter storage.ItemFilter, limit int) ([]*core.Item, error) {
	if ownerID == "" {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent items first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := makeItemOwnerPrefix(ownerID)

		// Seek past the last possible key under this owner's prefix
		startKey := makeItemOwnerKey(ownerID,
			time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC), core.ID(1<<63))

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()

			// Check if we're still in this owner's index
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var itemID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				itemID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			item, err := r.readItem(tx, makeItemKey(itemID))
			if err != nil {
				return err
			}
			if item == nil || !matchesFilter(item, filter) {
				continue
			}

			results = append(results, item)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
		return nil
	}, false)

	return results, err
}

// readItem reads and unmarshals an item. Returns nil, nil if not found.
func (r *ItemRepository) readItem(tx *badger.Txn, key []byte) (*core.Item, error) {
	badgerItem, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var item *core.Item
	err = badgerItem.Value(func(val []byte) error {
		var unmarshalErr error
		item, unmarshalErr = storage.UnmarshalItem(val)
		return unmarshalErr
	})
	return item, err
}

// matchesFilter reports whether an item satisfies all filter constraints.
func matchesFilter(item *core.Item, filter storage.ItemFilter) bool {
	if filter.ContentType != 0 && item.ContentType != filter.ContentType {
		return false
	}
	if !filter.From.IsZero() && item.CreatedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && !item.CreatedAt.Before(filter.To) {
		return false
	}
	for _, tag := range filter.Tags {
		if !slices.Contains(item.Tags, tag) {
			return false
		}
	}
	return true
}
