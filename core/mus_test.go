package core

import (
	"reflect"
	"testing"
	"time"
)

func TestItemMUS_RoundTrip(t *testing.T) {
	captured := time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC)
	item := Item{
		Id:          42,
		OwnerId:     "user-1",
		Title:       "Rust ownership explained",
		Body:        "A walkthrough of the borrow checker",
		SourceURL:   "https://example.com/rust-ownership",
		ContentType: ContentTypeArticle,
		Tags:        []string{"rust", "programming"},
		CreatedAt:   captured,
		InsertedAt:  captured.Add(time.Second),
		UpdatedAt:   captured.Add(time.Second),
	}

	bs := make([]byte, ItemMUS.Size(item))
	n := ItemMUS.Marshal(item, bs)
	if n != len(bs) {
		t.Fatalf("Marshal wrote %d bytes, Size reported %d", n, len(bs))
	}

	got, n, err := ItemMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if n != len(bs) {
		t.Errorf("Unmarshal consumed %d bytes, want %d", n, len(bs))
	}
	if !reflect.DeepEqual(got, item) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, item)
	}
}

func TestItemMUS_ZeroTimestamps(t *testing.T) {
	item := Item{
		Id:          7,
		OwnerId:     "user-1",
		Title:       "No dates yet",
		ContentType: ContentTypeNote,
	}

	bs := make([]byte, ItemMUS.Size(item))
	ItemMUS.Marshal(item, bs)

	got, _, err := ItemMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !got.CreatedAt.IsZero() || !got.InsertedAt.IsZero() || !got.UpdatedAt.IsZero() {
		t.Errorf("zero timestamps did not survive round trip: %+v", got)
	}
}

func TestEmbeddingRecordMUS_RoundTrip(t *testing.T) {
	rec := EmbeddingRecord{
		ItemId:    42,
		OwnerId:   "user-1",
		Vector:    []float32{0.25, -0.5, 0.125, 1.0},
		UpdatedAt: time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC),
	}

	bs := make([]byte, EmbeddingRecordMUS.Size(rec))
	n := EmbeddingRecordMUS.Marshal(rec, bs)
	if n != len(bs) {
		t.Fatalf("Marshal wrote %d bytes, Size reported %d", n, len(bs))
	}

	got, _, err := EmbeddingRecordMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, rec)
	}
}

func TestCheckpointMUS_RoundTrip(t *testing.T) {
	cp := Checkpoint{
		ProcessorType:   "embedding",
		LastProcessedId: 100,
		UpdatedAt:       time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC),
	}

	bs := make([]byte, CheckpointMUS.Size(cp))
	CheckpointMUS.Marshal(cp, bs)

	got, _, err := CheckpointMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(got, cp) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cp)
	}
}

func TestItemMUS_Truncated(t *testing.T) {
	item := Item{
		Id:          42,
		OwnerId:     "user-1",
		Title:       "Truncation target",
		ContentType: ContentTypeArticle,
		CreatedAt:   time.Now().UTC(),
	}

	bs := make([]byte, ItemMUS.Size(item))
	ItemMUS.Marshal(item, bs)

	_, _, err := ItemMUS.Unmarshal(bs[:len(bs)/2])
	if err == nil {
		t.Error("Unmarshal of truncated data should fail")
	}
}
