package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/stashlabs/stash/ai"
	"github.com/stashlabs/stash/core"
	"github.com/stashlabs/stash/storage"
)

// Pipeline orchestrates capture and processing of items.
// It manages concurrent generation of embedding records.
type Pipeline struct {
	items         storage.ItemRepository
	embeddings    storage.EmbeddingRepository
	checkpoints   storage.CheckpointRepository
	embeddingPool *ants.Pool
	embeddingProc processor
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithCheckpoints sets the checkpoint repository used to record embedding
// progress. Without one, progress is not persisted.
func WithCheckpoints(checkpoints storage.CheckpointRepository) Option {
	return func(p *Pipeline) error {
		p.checkpoints = checkpoints
		return nil
	}
}

// NewPipeline creates a new capture pipeline.
func NewPipeline(
	items storage.ItemRepository,
	embeddings storage.EmbeddingRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		items:         items,
		embeddings:    embeddings,
		embeddingPool: embeddingPool,
		logger:        slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the processor after options are applied so it gets final config
	embeddingProc, err := newEmbeddingProcessor(items, embeddings, p.checkpoints, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// CaptureRequest describes one item to capture.
type CaptureRequest struct {
	Title       string
	Body        string
	SourceURL   string
	ContentType core.ContentType
	Tags        []string
	CreatedAt   time.Time // Optional capture time (uses current time if zero)
}

// Capture stores the requested items for one owner and schedules embedding
// generation asynchronously. Items carrying a source URL get a stable
// content-derived ID, so re-capturing the same URL overwrites the earlier
// record instead of duplicating it. Errors during async processing are
// logged but do not fail the capture.
func (p *Pipeline) Capture(ctx context.Context, ownerID string, reqs ...*CaptureRequest) ([]*core.Item, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if len(reqs) == 0 {
		return nil, nil
	}

	items := make([]*core.Item, len(reqs))
	for i, req := range reqs {
		createdAt := req.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		item := &core.Item{
			OwnerId:     ownerID,
			Title:       req.Title,
			Body:        req.Body,
			SourceURL:   req.SourceURL,
			ContentType: req.ContentType,
			Tags:        req.Tags,
			CreatedAt:   createdAt,
		}
		if req.SourceURL != "" {
			item.Id = core.IDFromContent(ownerID + "\n" + req.SourceURL)
		}

		if err := core.ValidateItem(item); err != nil {
			return nil, fmt.Errorf("capture request %d: %w", i, err)
		}
		items[i] = item
	}

	added, err := p.items.AddItems(ctx, items...)
	if err != nil {
		return nil, err
	}

	ids := make([]core.ID, len(added))
	for i, item := range added {
		ids[i] = item.Id
	}

	// Submit for async processing
	p.embeddingPool.Submit(func() {
		if err := p.embeddingProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing embeddings", "err", err)
			return
		}
		if err := p.embeddingProc.checkpoint(); err != nil {
			p.logger.Error("error applying embedding checkpoint", "err", err)
		}
	})

	return added, nil
}

// Delete removes items and their embedding records. Embedding records go
// first so a partial failure never leaves a vector without its item.
func (p *Pipeline) Delete(ctx context.Context, ids ...core.ID) error {
	if len(ids) == 0 {
		return nil
	}

	for _, id := range ids {
		if err := p.embeddings.Remove(ctx, id); err != nil {
			return fmt.Errorf("removing embedding for item %d: %w", id, err)
		}
	}

	return p.items.DeleteItems(ctx, ids...)
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
