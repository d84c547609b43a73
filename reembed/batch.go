package reembed

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stashlabs/stash/ai"
	"github.com/stashlabs/stash/core"
	"github.com/stashlabs/stash/ingestion"
	"github.com/stashlabs/stash/storage"
)

// embedChunkSize bounds the number of texts sent to the provider in one
// request. Chunks of a batch are embedded concurrently.
const embedChunkSize = 16

// BatchProcessor handles embedding generation for batches of items.
type BatchProcessor struct {
	embeddings     storage.EmbeddingRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(embeddings storage.EmbeddingRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		embeddings:     embeddings,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of items and upserts the
// resulting records. Vectors are normalized after embedding to ensure
// compatibility with cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, items []*core.Item) error {
	if len(items) == 0 {
		return nil
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = ingestion.EmbeddingText(item)
	}

	embeddings := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(texts); start += embedChunkSize {
		end := start + embedChunkSize
		if end > len(texts) {
			end = len(texts)
		}

		chunk := texts[start:end]
		out := embeddings[start:end]
		g.Go(func() error {
			var vectors [][]float32
			err := RetryWithBackoff(gctx, func() error {
				var err error
				vectors, err = bp.embedder.EmbedTexts(gctx, chunk)
				return err
			}, bp.maxRetries, bp.retryBaseDelay)
			if err != nil {
				return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
			}
			if len(vectors) != len(chunk) {
				return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunk), len(vectors))
			}
			copy(out, vectors)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, item := range items {
		rec := &core.EmbeddingRecord{
			ItemId:  item.Id,
			OwnerId: item.OwnerId,
			Vector:  NormalizeVector(embeddings[i]),
		}
		if err := bp.embeddings.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("failed to store embedding for item %d: %w", item.Id, err)
		}
	}

	return nil
}
