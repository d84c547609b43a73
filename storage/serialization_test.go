package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashlabs/stash/core"
)

func TestItemSerialization(t *testing.T) {
	item := &core.Item{
		Id:          123,
		OwnerId:     "user-1",
		Title:       "Standing desk",
		Body:        "Adjustable height, walnut top",
		SourceURL:   "https://shop.example.com/desk",
		ContentType: core.ContentTypeProduct,
		Tags:        []string{"office", "furniture"},
		CreatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		InsertedAt:  time.Date(2025, 3, 1, 12, 0, 1, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 3, 1, 12, 0, 1, 0, time.UTC),
	}

	data := MarshalItem(item)
	got, err := UnmarshalItem(data)
	require.NoError(t, err)
	assert.Equal(t, item, got)
}

func TestItemSerialization_Corrupted(t *testing.T) {
	item := &core.Item{
		Id:          1,
		OwnerId:     "user-1",
		Title:       "A title",
		ContentType: core.ContentTypeNote,
		CreatedAt:   time.Now().UTC(),
	}

	data := MarshalItem(item)
	_, err := UnmarshalItem(data[:3])
	assert.Error(t, err)
}

func TestEmbeddingRecordSerialization(t *testing.T) {
	rec := &core.EmbeddingRecord{
		ItemId:    123,
		OwnerId:   "user-1",
		Vector:    []float32{0.5, -0.25, 0.75},
		UpdatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	data := MarshalEmbeddingRecord(rec)
	got, err := UnmarshalEmbeddingRecord(data)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestIDSerialization(t *testing.T) {
	for _, id := range []core.ID{0, 1, 255, 1 << 40} {
		got, err := UnmarshalID(MarshalID(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}
