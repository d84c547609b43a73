package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/stashlabs/stash/ai"
	"github.com/stashlabs/stash/core"
	"github.com/stashlabs/stash/storage"
)

// embeddingProcessorType keys the checkpoint record for this processor.
const embeddingProcessorType = "embeddings"

// embeddingProcessor generates embedding records for captured items.
// One instance is shared by every pool worker, so lastID is atomic.
type embeddingProcessor struct {
	items       storage.ItemRepository
	embeddings  storage.EmbeddingRepository
	checkpoints storage.CheckpointRepository
	embedder    ai.Embedder
	lastID      atomic.Uint64
	logger      *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor. The checkpoint
// repository is optional; without one, checkpoint is a no-op.
func newEmbeddingProcessor(
	items storage.ItemRepository,
	embeddings storage.EmbeddingRepository,
	checkpoints storage.CheckpointRepository,
	embedder ai.Embedder,
	logger *slog.Logger,
) (processor, error) {
	if items == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if embeddings == nil {
		return nil, fmt.Errorf("embedding repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		items:       items,
		embeddings:  embeddings,
		checkpoints: checkpoints,
		embedder:    embedder,
		logger:      logger.With("processor", embeddingProcessorType),
	}, nil
}

// process generates and stores embedding records for the specified items.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	if len(ids) == 0 {
		return nil
	}

	ep.logger.Info("processing items for embeddings", "items", len(ids))

	// Sort first so checkpointing works correctly
	slices.Sort(ids)

	items, err := ep.items.GetItems(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving items", "err", err)
		return err
	}
	if len(items) == 0 {
		return nil
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = EmbeddingText(item)
	}

	ep.logger.Debug("generating embeddings for items", "items", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(items) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(items), len(embeddings))
	}

	for i, item := range items {
		rec := &core.EmbeddingRecord{
			ItemId:  item.Id,
			OwnerId: item.OwnerId,
			Vector:  embeddings[i],
		}
		if err := ep.embeddings.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("storing embedding for item %d: %w", item.Id, err)
		}
	}

	highestID := uint64(items[len(items)-1].Id)
	for {
		cur := ep.lastID.Load()
		if highestID <= cur || ep.lastID.CompareAndSwap(cur, highestID) {
			break
		}
	}

	return nil
}

// checkpoint saves the highest processed item ID.
func (ep *embeddingProcessor) checkpoint() error {
	lastID := ep.lastID.Load()
	if ep.checkpoints == nil || lastID == 0 {
		return nil
	}
	return ep.checkpoints.SaveCheckpoint(context.Background(), &core.Checkpoint{
		ProcessorType:   embeddingProcessorType,
		LastProcessedId: core.ID(lastID),
	})
}

// EmbeddingText assembles the text submitted to the embedding provider for
// one item. Batch re-embedding must use the same assembly, or stored vectors
// drift from freshly captured ones.
func EmbeddingText(item *core.Item) string {
	parts := make([]string, 0, 3)
	if item.Title != "" {
		parts = append(parts, item.Title)
	}
	if item.Body != "" {
		parts = append(parts, item.Body)
	}
	if len(item.Tags) > 0 {
		parts = append(parts, strings.Join(item.Tags, " "))
	}
	return strings.Join(parts, "\n")
}
