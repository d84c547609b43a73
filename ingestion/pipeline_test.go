package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashlabs/stash/ai"
	"github.com/stashlabs/stash/core"
	"github.com/stashlabs/stash/storage"
	"github.com/stashlabs/stash/storage/badger"
)

// testEmbedder implements ai.Embedder for testing
type testEmbedder struct {
	embeddings  [][]float32
	shouldError bool
}

func (m *testEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if m.shouldError {
		return nil, errors.New("embedder error")
	}
	if len(m.embeddings) > 0 {
		return m.embeddings[0], nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *testEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if m.shouldError {
		return nil, errors.New("embedder error")
	}
	if len(m.embeddings) > 0 {
		return m.embeddings, nil
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{float32(i+1) * 0.1, float32(i+1) * 0.2, float32(i+1) * 0.3}
	}
	return result, nil
}

// testAIProvider implements ai.AIProvider for testing
type testAIProvider struct {
	embedder ai.Embedder
}

func (p *testAIProvider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *testAIProvider) Close() error {
	return nil
}

func setupTestRepositories(t *testing.T) (storage.ItemRepository, storage.EmbeddingRepository, *badger.Backend) {
	itemRepo, embeddingRepo, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)

	t.Cleanup(func() {
		itemRepo.Close()
		backend.Close()
	})

	return itemRepo, embeddingRepo, backend
}

func addTestItems(t *testing.T, repo storage.ItemRepository, titles ...string) []core.ID {
	t.Helper()

	items := make([]*core.Item, len(titles))
	for i, title := range titles {
		items[i] = &core.Item{
			OwnerId:     "u1",
			Title:       title,
			ContentType: core.ContentTypeNote,
			CreatedAt:   time.Now().UTC(),
		}
	}

	added, err := repo.AddItems(context.Background(), items...)
	require.NoError(t, err)

	ids := make([]core.ID, len(added))
	for i, item := range added {
		ids[i] = item.Id
	}
	return ids
}

func TestEmbeddingProcessor_Process(t *testing.T) {
	itemRepo, embeddingRepo, _ := setupTestRepositories(t)
	ctx := context.Background()

	embedder := &testEmbedder{
		embeddings: [][]float32{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}},
	}

	ep, err := newEmbeddingProcessor(itemRepo, embeddingRepo, nil, embedder, nil)
	require.NoError(t, err)

	ids := addTestItems(t, itemRepo, "First note", "Second note")

	err = ep.process(ctx, ids...)
	require.NoError(t, err)

	// Verify embedding records were stored
	for i, id := range ids {
		rec, err := embeddingRepo.Get(ctx, id)
		require.NoError(t, err, "record %d", i)
		assert.Equal(t, "u1", rec.OwnerId)
		assert.Len(t, rec.Vector, 3)
	}
}

func TestEmbeddingProcessor_Process_EmbedderError(t *testing.T) {
	itemRepo, embeddingRepo, _ := setupTestRepositories(t)
	ctx := context.Background()

	embedder := &testEmbedder{shouldError: true}

	ep, err := newEmbeddingProcessor(itemRepo, embeddingRepo, nil, embedder, nil)
	require.NoError(t, err)

	ids := addTestItems(t, itemRepo, "Test note")

	err = ep.process(ctx, ids...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedder error")

	// No record should exist for the failed item
	_, err = embeddingRepo.Get(ctx, ids[0])
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEmbeddingProcessor_Process_EmptyIDs(t *testing.T) {
	itemRepo, embeddingRepo, _ := setupTestRepositories(t)

	ep, err := newEmbeddingProcessor(itemRepo, embeddingRepo, nil, &testEmbedder{}, nil)
	require.NoError(t, err)

	err = ep.process(context.Background())
	require.NoError(t, err)
}

func TestEmbeddingProcessor_Checkpoint(t *testing.T) {
	itemRepo, embeddingRepo, backend := setupTestRepositories(t)
	ctx := context.Background()

	checkpoints := badger.NewCheckpointRepository(backend)

	ep, err := newEmbeddingProcessor(itemRepo, embeddingRepo, checkpoints, &testEmbedder{}, nil)
	require.NoError(t, err)

	// Checkpoint before any processing is a no-op
	require.NoError(t, ep.checkpoint())
	cp, err := checkpoints.LoadCheckpoint(ctx, "embeddings")
	require.NoError(t, err)
	assert.Nil(t, cp)

	ids := addTestItems(t, itemRepo, "First", "Second")
	require.NoError(t, ep.process(ctx, ids...))
	require.NoError(t, ep.checkpoint())

	cp, err = checkpoints.LoadCheckpoint(ctx, "embeddings")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, "embeddings", cp.ProcessorType)
	assert.NotZero(t, cp.LastProcessedId)
}

func TestEmbeddingProcessor_Checkpoint_Concurrent(t *testing.T) {
	itemRepo, embeddingRepo, backend := setupTestRepositories(t)
	ctx := context.Background()

	checkpoints := badger.NewCheckpointRepository(backend)

	ep, err := newEmbeddingProcessor(itemRepo, embeddingRepo, checkpoints, &testEmbedder{}, nil)
	require.NoError(t, err)

	// Pool workers share one processor, so process and checkpoint run
	// concurrently from several goroutines
	ids := addTestItems(t, itemRepo, "A", "B", "C", "D", "E", "F", "G", "H")

	var wg sync.WaitGroup
	for i := 0; i < len(ids); i += 2 {
		wg.Add(1)
		go func(batch []core.ID) {
			defer wg.Done()
			assert.NoError(t, ep.process(ctx, batch...))
			assert.NoError(t, ep.checkpoint())
		}(ids[i : i+2])
	}
	wg.Wait()

	highest := ids[0]
	for _, id := range ids {
		if id > highest {
			highest = id
		}
	}

	require.NoError(t, ep.checkpoint())
	cp, err := checkpoints.LoadCheckpoint(ctx, "embeddings")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, highest, cp.LastProcessedId)
}

func TestEmbeddingProcessor_Checkpoint_NoRepository(t *testing.T) {
	itemRepo, embeddingRepo, _ := setupTestRepositories(t)

	ep, err := newEmbeddingProcessor(itemRepo, embeddingRepo, nil, &testEmbedder{}, nil)
	require.NoError(t, err)

	require.NoError(t, ep.checkpoint())
}

func TestNewPipeline(t *testing.T) {
	itemRepo, embeddingRepo, _ := setupTestRepositories(t)

	provider := &testAIProvider{embedder: &testEmbedder{}}

	t.Run("valid pipeline", func(t *testing.T) {
		pipeline, err := NewPipeline(itemRepo, embeddingRepo, provider)
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		defer pipeline.Release()

		assert.NotNil(t, pipeline.items)
		assert.NotNil(t, pipeline.embeddings)
		assert.NotNil(t, pipeline.embeddingPool)
	})

	t.Run("nil item repository", func(t *testing.T) {
		_, err := NewPipeline(nil, embeddingRepo, provider)
		assert.Equal(t, ErrItemRepositoryRequired, err)
	})

	t.Run("nil embedding repository", func(t *testing.T) {
		_, err := NewPipeline(itemRepo, nil, provider)
		assert.Equal(t, ErrEmbeddingRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(itemRepo, embeddingRepo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestPipeline_WithOptions(t *testing.T) {
	itemRepo, embeddingRepo, backend := setupTestRepositories(t)

	provider := &testAIProvider{embedder: &testEmbedder{}}

	t.Run("with pool size", func(t *testing.T) {
		pipeline, err := NewPipeline(itemRepo, embeddingRepo, provider, WithPoolSize(4))
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		defer pipeline.Release()

		assert.NotNil(t, pipeline.embeddingPool)
	})

	t.Run("with pool size zero defaults to 1", func(t *testing.T) {
		pipeline, err := NewPipeline(itemRepo, embeddingRepo, provider, WithPoolSize(0))
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		defer pipeline.Release()
	})

	t.Run("with custom logger", func(t *testing.T) {
		logger := slog.Default()
		pipeline, err := NewPipeline(itemRepo, embeddingRepo, provider, WithLogger(logger))
		require.NoError(t, err)
		defer pipeline.Release()

		assert.Equal(t, logger, pipeline.logger)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		pipeline, err := NewPipeline(itemRepo, embeddingRepo, provider, WithLogger(nil))
		require.NoError(t, err)
		defer pipeline.Release()

		assert.NotNil(t, pipeline.logger)
	})

	t.Run("with checkpoints", func(t *testing.T) {
		checkpoints := badger.NewCheckpointRepository(backend)
		pipeline, err := NewPipeline(itemRepo, embeddingRepo, provider, WithCheckpoints(checkpoints))
		require.NoError(t, err)
		defer pipeline.Release()

		assert.NotNil(t, pipeline.checkpoints)
	})
}

func TestPipeline_Capture(t *testing.T) {
	itemRepo, embeddingRepo, _ := setupTestRepositories(t)

	provider := &testAIProvider{embedder: &testEmbedder{}}

	pipeline, err := NewPipeline(itemRepo, embeddingRepo, provider, WithPoolSize(1))
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()

	t.Run("capture single item", func(t *testing.T) {
		added, err := pipeline.Capture(ctx, "u1", &CaptureRequest{
			Title:       "Why we sleep",
			Body:        "Notes on the book",
			ContentType: core.ContentTypeNote,
			Tags:        []string{"books"},
		})
		require.NoError(t, err)
		require.Len(t, added, 1)
		assert.NotZero(t, added[0].Id)

		// Embedding generation is async
		assert.Eventually(t, func() bool {
			_, err := embeddingRepo.Get(ctx, added[0].Id)
			return err == nil
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("capture with source URL gets stable ID", func(t *testing.T) {
		req := &CaptureRequest{
			Title:       "Interesting article",
			SourceURL:   "https://example.com/post",
			ContentType: core.ContentTypeArticle,
		}

		first, err := pipeline.Capture(ctx, "u1", req)
		require.NoError(t, err)
		require.Len(t, first, 1)

		second, err := pipeline.Capture(ctx, "u1", req)
		require.NoError(t, err)
		require.Len(t, second, 1)

		assert.Equal(t, first[0].Id, second[0].Id)

		// Same URL for another owner must not collide
		other, err := pipeline.Capture(ctx, "u2", req)
		require.NoError(t, err)
		assert.NotEqual(t, first[0].Id, other[0].Id)
	})

	t.Run("capture multiple items", func(t *testing.T) {
		added, err := pipeline.Capture(ctx, "u1",
			&CaptureRequest{Title: "One", ContentType: core.ContentTypeNote},
			&CaptureRequest{Title: "Two", ContentType: core.ContentTypeNote},
			&CaptureRequest{Title: "Three", ContentType: core.ContentTypeTodo},
		)
		require.NoError(t, err)
		assert.Len(t, added, 3)
	})

	t.Run("capture with no requests", func(t *testing.T) {
		added, err := pipeline.Capture(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, added)
	})

	t.Run("missing owner", func(t *testing.T) {
		_, err := pipeline.Capture(ctx, "", &CaptureRequest{Title: "x", ContentType: core.ContentTypeNote})
		assert.ErrorIs(t, err, ErrOwnerRequired)
	})

	t.Run("invalid request rejected before storage", func(t *testing.T) {
		_, err := pipeline.Capture(ctx, "u1", &CaptureRequest{ContentType: core.ContentTypeNote})
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrEmptyTitle)
	})
}

func TestPipeline_Delete(t *testing.T) {
	itemRepo, embeddingRepo, _ := setupTestRepositories(t)

	provider := &testAIProvider{embedder: &testEmbedder{}}

	pipeline, err := NewPipeline(itemRepo, embeddingRepo, provider, WithPoolSize(1))
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()

	added, err := pipeline.Capture(ctx, "u1", &CaptureRequest{
		Title:       "Doomed item",
		ContentType: core.ContentTypeNote,
	})
	require.NoError(t, err)
	require.Len(t, added, 1)
	id := added[0].Id

	// Wait until the embedding exists so the delete has work to do
	require.Eventually(t, func() bool {
		_, err := embeddingRepo.Get(ctx, id)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, pipeline.Delete(ctx, id))

	_, err = itemRepo.GetItem(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = embeddingRepo.Get(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting again reports the missing item
	err = pipeline.Delete(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPipeline_Release(t *testing.T) {
	itemRepo, embeddingRepo, _ := setupTestRepositories(t)

	provider := &testAIProvider{embedder: &testEmbedder{}}

	pipeline, err := NewPipeline(itemRepo, embeddingRepo, provider)
	require.NoError(t, err)

	// Release should not panic
	pipeline.Release()

	// Multiple releases should not panic
	pipeline.Release()
}
