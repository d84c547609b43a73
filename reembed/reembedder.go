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
	"fmt"
	"io"
	"time"

	"github.com/stashlabs/stash/ai"
	"github.com/stashlabs/stash/core"
	"github.com/stashlabs/stash/storage"
)

// checkpointType keys the persisted progress record for this job.
const checkpointType = "reembed"

// Config holds configuration for the re-embedding operation.
type Config struct {
	// BatchSize is the number of items to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of items)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Resume continues from the last saved checkpoint instead of
	// starting over
	Resume bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates embedding records for every item in the database,
// typically after switching embedding models.
type Reembedder struct {
	items       storage.ItemRepository
	checkpoints storage.CheckpointRepository
	config      *Config
	progress    io.Writer
	processor   *BatchProcessor
	iterator    *ItemIterator
}

// NewReembedder creates a new reembedder.
// checkpoints may be nil, in which case progress is not persisted and
// Resume has no effect.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(
	items storage.ItemRepository,
	embeddings storage.EmbeddingRepository,
	checkpoints storage.CheckpointRepository,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(embeddings, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewItemIterator(items, config.BatchSize)

	return &Reembedder{
		items:       items,
		checkpoints: checkpoints,
		config:      config,
		progress:    progress,
		processor:   processor,
		iterator:    iterator,
	}
}

// Run executes the re-embedding operation.
// Every item in the database is re-embedded with the configured embedder.
// Progress is reported to the configured writer and checkpointed after each
// batch so an interrupted run can resume.
func (r *Reembedder) Run(ctx context.Context) error {
	totalItems, err := r.iterator.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to query items: %w", err)
	}

	if totalItems == 0 {
		fmt.Fprintf(r.progress, "No items found in database (0 items)\n")
		return nil
	}

	var resumeAfter core.ID
	if r.config.Resume && r.checkpoints != nil {
		cp, err := r.checkpoints.LoadCheckpoint(ctx, checkpointType)
		if err != nil {
			return fmt.Errorf("failed to load checkpoint: %w", err)
		}
		if cp != nil {
			resumeAfter = cp.LastProcessedId
			fmt.Fprintf(r.progress, "Resuming after item %d\n", resumeAfter)
		}
	}

	fmt.Fprintf(r.progress, "Starting re-embedding of %d items (batch size: %d)\n",
		totalItems, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, totalItems, r.config.ReportInterval)
	tracker.Start()

	processed := 0

	err = r.iterator.ForEach(ctx, resumeAfter, func(items []*core.Item) error {
		if err := r.processor.Process(ctx, items); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(items)
		tracker.Update(processed)

		if r.checkpoints != nil {
			lastID := items[len(items)-1].Id
			if err := r.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
				ProcessorType:   checkpointType,
				LastProcessedId: lastID,
			}); err != nil {
				return fmt.Errorf("failed to save checkpoint: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Re-embedding complete. Processed %d items in %v (%.1f items/sec)\n",
		processed, elapsed.Round(time.Second), float64(processed)/elapsed.Seconds())

	return nil
}
