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


package core

import (
	"fmt"
	"time"
)

// ValidateItem validates an Item according to domain rules.
//
// Validation rules:
//   - OwnerId must not be empty
//   - Title must not be empty
//   - ContentType must be one of the closed set
//   - CreatedAt must not be in the future
//
// NOT validated:
//   - ID (0 is valid from database sequences)
//   - Body, SourceURL, Tags (all optional)
func ValidateItem(item *Item) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}

	if item.OwnerId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyOwner)
	}

	if item.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyTitle)
	}

	if err := ValidateContentType(item.ContentType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}

	if !IsValidTimestamp(item.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateContentType checks that a ContentType is one of the defined values.
func ValidateContentType(t ContentType) error {
	switch t {
	case ContentTypeArticle, ContentTypeVideo, ContentTypeProduct, ContentTypeNote, ContentTypeTodo:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidContentType, t)
	}
}

// ValidateEmbeddingRecord validates an EmbeddingRecord according to domain rules.
//
// Validation rules:
//   - ItemId must be non-zero
//   - OwnerId must not be empty
//   - Vector must not be empty
func ValidateEmbeddingRecord(rec *EmbeddingRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidEmbedding)
	}

	if rec.ItemId == 0 {
		return fmt.Errorf("%w: item id is zero", ErrInvalidEmbedding)
	}

	if rec.OwnerId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyOwner)
	}

	if len(rec.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyVector)
	}

	return nil
}

// IsValidTimestamp reports whether a timestamp is usable for a new record.
// A small amount of clock skew is tolerated.
func IsValidTimestamp(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.After(time.Now().UTC().Add(1 * time.Minute))
}
