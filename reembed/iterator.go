// Copyright 2025 Stash Labs
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


package reembed

import (
	"context"
	"time"

	"github.com/stashlabs/stash/core"
	"github.com/stashlabs/stash/storage"
)

const (
	// DefaultBatchSize is the default number of items to fetch in each batch
	DefaultBatchSize = 100
)

// ItemIterator iterates over all items in batches, ordered by capture date.
type ItemIterator struct {
	repo      storage.ItemRepository
	batchSize int
}

// NewItemIterator creates a new item iterator.
// batchSize: number of items to process in each batch (must be > 0)
func NewItemIterator(repo storage.ItemRepository, batchSize int) *ItemIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ItemIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over all items, calling fn for each batch.
// A non-zero resumeAfter skips everything up to and including that item;
// if the item no longer exists, iteration covers the full set.
// Iteration stops on first error from fn or when all items are processed.
// Context cancellation is checked between batches.
func (it *ItemIterator) ForEach(ctx context.Context, resumeAfter core.ID, fn func([]*core.Item) error) error {
	// Use a very wide date range to get all items
	startTime := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2100, 12, 31, 23, 59, 59, 0, time.UTC)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	items, err := it.repo.GetItemsByDateRange(ctx, startTime, endTime)
	if err != nil {
		return err
	}

	if resumeAfter != 0 {
		for i, item := range items {
			if item.Id == resumeAfter {
				items = items[i+1:]
				break
			}
		}
	}

	if len(items) == 0 {
		return nil
	}

	for i := 0; i < len(items); i += it.batchSize {
		end := i + it.batchSize
		if end > len(items) {
			end = len(items)
		}

		if err := fn(items[i:end]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}

// Count returns the total number of items that a full iteration would visit.
func (it *ItemIterator) Count(ctx context.Context) (int, error) {
	startTime := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2100, 12, 31, 23, 59, 59, 0, time.UTC)

	items, err := it.repo.GetItemsByDateRange(ctx, startTime, endTime)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
