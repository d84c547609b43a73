package search

import (
	"sort"

	"github.com/stashlabs/stash/core"
)

// Weights controls how lexical and vector scores combine during fusion.
type Weights struct {
	Vector  float64
	Lexical float64
}

// DefaultWeights returns the standard fusion weighting. The split favors the
// semantic signal; both values are tuning defaults, not load-bearing
// constants, and callers may override them via WithWeights.
func DefaultWeights() Weights {
	return Weights{
		Vector:  0.7,
		Lexical: 0.3,
	}
}

// fusedEntry tracks one item through fusion with its tie-break rank.
type fusedEntry struct {
	item     *core.Item
	lexical  float64
	vector   float64
	reason   string
	semantic bool
	rank     int
}

// Fuse merges lexical and vector result lists into one ranked list.
//
// For every item in the union, the combined score is
// weights.Vector*vectorScore + weights.Lexical*lexicalScore, with a missing
// component defaulting to 0. The output is sorted by combined score
// descending; ties keep lexical-list order first, then vector-list order,
// which makes the ordering fully deterministic for identical inputs.
// The result is capped to limit when limit > 0.
func Fuse(lexical, vector []*core.ScoredItem, weights Weights, limit int) []*core.ScoredItem {
	entries := make(map[core.ID]*fusedEntry, len(lexical)+len(vector))
	order := make([]core.ID, 0, len(lexical)+len(vector))

	for _, res := range lexical {
		id := res.Item.Id
		if _, ok := entries[id]; ok {
			continue
		}
		entries[id] = &fusedEntry{
			item:    res.Item,
			lexical: res.Score,
			reason:  res.Reason,
			rank:    len(order),
		}
		order = append(order, id)
	}

	for _, res := range vector {
		id := res.Item.Id
		if entry, ok := entries[id]; ok {
			entry.vector = res.Score
			entry.semantic = true
			continue
		}
		entries[id] = &fusedEntry{
			item:     res.Item,
			vector:   res.Score,
			semantic: true,
			rank:     len(order),
		}
		order = append(order, id)
	}

	results := make([]*core.ScoredItem, 0, len(order))
	ranks := make(map[*core.ScoredItem]int, len(order))
	for _, id := range order {
		entry := entries[id]

		score := weights.Vector*entry.vector + weights.Lexical*entry.lexical
		if score > 1.0 {
			score = 1.0
		}

		reason := entry.reason
		switch {
		case reason == "" && entry.semantic:
			reason = "Semantic match"
		case entry.semantic:
			reason = reason + "; semantic match"
		}

		scored := &core.ScoredItem{
			Item:   entry.item,
			Score:  score,
			Reason: reason,
		}
		results = append(results, scored)
		ranks[scored] = entry.rank
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return ranks[results[i]] < ranks[results[j]]
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results
}
