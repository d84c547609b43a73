package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/stashlabs/stash/core"
	"github.com/stashlabs/stash/storage"
)

// Field-match weights for lexical scoring. Scores are capped at 1.0.
const (
	titleWeight = 0.5
	bodyWeight  = 0.3
	tagWeight   = 0.2
)

// LexicalMatcher performs case-insensitive substring matching over an
// owner's items.
type LexicalMatcher struct {
	items  storage.ItemRepository
	logger *slog.Logger
}

// NewLexicalMatcher creates a lexical matcher over the given repository.
func NewLexicalMatcher(items storage.ItemRepository, logger *slog.Logger) *LexicalMatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LexicalMatcher{
		items:  items,
		logger: logger.With("component", "lexical-matcher"),
	}
}

// Match retrieves the owner's items satisfying the query's filters and
// scores those whose title, body, or tags contain the query text.
//
// Filters apply with AND semantics as a pre-filter. When the query text is
// empty, all filtered items are returned (filter-only mode). Results keep
// the repository's natural order (newest first); sorting is the caller's
// responsibility when merging.
func (m *LexicalMatcher) Match(ctx context.Context, ownerID string, q Query, limit int) ([]*core.ScoredItem, error) {
	filter := storage.ItemFilter{
		ContentType: q.ContentType,
		Tags:        q.Tags,
		From:        q.From,
		To:          q.To,
	}

	// Fetch unbounded when matching text: the substring filter runs after
	// retrieval, so a pre-applied limit would drop candidates.
	fetchLimit := limit
	if q.Text != "" {
		fetchLimit = 0
	}

	items, err := m.items.ListByOwner(ctx, ownerID, filter, fetchLimit)
	if err != nil {
		return nil, err
	}

	if q.Text == "" {
		results := make([]*core.ScoredItem, 0, len(items))
		for _, item := range items {
			results = append(results, &core.ScoredItem{
				Item:   item,
				Score:  filterOnlyScore,
				Reason: "Matched filters",
			})
		}
		return results, nil
	}

	needle := strings.ToLower(q.Text)
	var results []*core.ScoredItem
	for _, item := range items {
		scored := scoreItem(item, needle)
		if scored == nil {
			continue
		}
		results = append(results, scored)
		if limit > 0 && len(results) >= limit {
			break
		}
	}

	return results, nil
}

// filterOnlyScore is assigned when items match on filters alone. It keeps
// filter-only hits rankable without claiming textual relevance.
const filterOnlyScore = 0.1

// scoreItem computes the weighted field-match score for one item.
// Returns nil when no field contains the needle.
func scoreItem(item *core.Item, needle string) *core.ScoredItem {
	var score float64
	var matched []string

	if strings.Contains(strings.ToLower(item.Title), needle) {
		score += titleWeight
		matched = append(matched, "title")
	}
	if item.Body != "" && strings.Contains(strings.ToLower(item.Body), needle) {
		score += bodyWeight
		matched = append(matched, "content")
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			score += tagWeight
			matched = append(matched, "tags")
			break
		}
	}

	if len(matched) == 0 {
		return nil
	}
	if score > 1.0 {
		score = 1.0
	}

	return &core.ScoredItem{
		Item:   item,
		Score:  score,
		Reason: "Matched in " + strings.Join(matched, ", "),
	}
}
