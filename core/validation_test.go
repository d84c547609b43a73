package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateItem(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		item    *Item
		wantErr error
	}{
		{
			name: "valid item",
			item: &Item{
				Id:          1,
				OwnerId:     "user-1",
				Title:       "Sourdough starter guide",
				ContentType: ContentTypeArticle,
				CreatedAt:   validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid item with ID 0",
			item: &Item{
				Id:          0,
				OwnerId:     "user-1",
				Title:       "Untitled note",
				ContentType: ContentTypeNote,
				CreatedAt:   validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid item with empty optional fields",
			item: &Item{
				Id:          2,
				OwnerId:     "user-1",
				Title:       "Bare minimum",
				ContentType: ContentTypeTodo,
				CreatedAt:   validTime,
				Body:        "",
				SourceURL:   "",
				Tags:        nil,
			},
			wantErr: nil,
		},
		{
			name:    "nil item",
			item:    nil,
			wantErr: ErrInvalidItem,
		},
		{
			name: "empty owner",
			item: &Item{
				Id:          1,
				OwnerId:     "",
				Title:       "Orphaned",
				ContentType: ContentTypeArticle,
				CreatedAt:   validTime,
			},
			wantErr: ErrEmptyOwner,
		},
		{
			name: "empty title",
			item: &Item{
				Id:          1,
				OwnerId:     "user-1",
				Title:       "",
				ContentType: ContentTypeArticle,
				CreatedAt:   validTime,
			},
			wantErr: ErrEmptyTitle,
		},
		{
			name: "invalid content type",
			item: &Item{
				Id:          1,
				OwnerId:     "user-1",
				Title:       "Mystery",
				ContentType: ContentType(999),
				CreatedAt:   validTime,
			},
			wantErr: ErrInvalidContentType,
		},
		{
			name: "future timestamp",
			item: &Item{
				Id:          1,
				OwnerId:     "user-1",
				Title:       "From the future",
				ContentType: ContentTypeArticle,
				CreatedAt:   futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
		{
			name: "zero timestamp",
			item: &Item{
				Id:          1,
				OwnerId:     "user-1",
				Title:       "Unstamped",
				ContentType: ContentTypeArticle,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItem(tt.item)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateItem() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateItem() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidItem) {
				t.Errorf("ValidateItem() error %v should wrap ErrInvalidItem", err)
			}
		})
	}
}

func TestValidateEmbeddingRecord(t *testing.T) {
	tests := []struct {
		name    string
		rec     *EmbeddingRecord
		wantErr error
	}{
		{
			name: "valid record",
			rec: &EmbeddingRecord{
				ItemId:    1,
				OwnerId:   "user-1",
				Vector:    []float32{0.1, 0.2, 0.3},
				UpdatedAt: time.Now(),
			},
			wantErr: nil,
		},
		{
			name:    "nil record",
			rec:     nil,
			wantErr: ErrInvalidEmbedding,
		},
		{
			name: "zero item id",
			rec: &EmbeddingRecord{
				ItemId:  0,
				OwnerId: "user-1",
				Vector:  []float32{0.1},
			},
			wantErr: ErrInvalidEmbedding,
		},
		{
			name: "empty owner",
			rec: &EmbeddingRecord{
				ItemId: 1,
				Vector: []float32{0.1},
			},
			wantErr: ErrEmptyOwner,
		},
		{
			name: "empty vector",
			rec: &EmbeddingRecord{
				ItemId:  1,
				OwnerId: "user-1",
				Vector:  nil,
			},
			wantErr: ErrEmptyVector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbeddingRecord(tt.rec)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEmbeddingRecord() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEmbeddingRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{
			name: "past timestamp",
			ts:   time.Now().Add(-1 * time.Hour),
			want: true,
		},
		{
			name: "current time (approximately)",
			ts:   time.Now(),
			want: true,
		},
		{
			name: "slight clock skew tolerated",
			ts:   time.Now().Add(30 * time.Second),
			want: true,
		},
		{
			name: "future timestamp",
			ts:   time.Now().Add(1 * time.Hour),
			want: false,
		},
		{
			name: "zero time",
			ts:   time.Time{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidTimestamp(tt.ts)
			if got != tt.want {
				t.Errorf("IsValidTimestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}
