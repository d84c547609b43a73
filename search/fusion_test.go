package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashlabs/stash/core"
)

func scoredItem(id core.ID, title string, score float64, reason string) *core.ScoredItem {
	return &core.ScoredItem{
		Item:   &core.Item{Id: id, OwnerId: "u1", Title: title, ContentType: core.ContentTypeArticle},
		Score:  score,
		Reason: reason,
	}
}

func TestFuse_WeightedMerge(t *testing.T) {
	// Lexical finds only A; the vector leg ranks B far above A.
	lexical := []*core.ScoredItem{
		scoredItem(1, "Rust async runtimes", 0.4, "Matched in title"),
	}
	vector := []*core.ScoredItem{
		scoredItem(2, "Baking sourdough bread", 0.9, "Semantic match"),
		scoredItem(1, "Rust async runtimes", 0.4, "Semantic match"),
	}

	results := Fuse(lexical, vector, DefaultWeights(), 10)

	require.Len(t, results, 2)

	// B = 0.7*0.9 + 0.3*0 = 0.63, A = 0.7*0.4 + 0.3*0.4 = 0.40
	assert.Equal(t, core.ID(2), results[0].Item.Id)
	assert.InDelta(t, 0.63, results[0].Score, 1e-9)
	assert.Equal(t, core.ID(1), results[1].Item.Id)
	assert.InDelta(t, 0.40, results[1].Score, 1e-9)
}

func TestFuse_MissingLegScoresZero(t *testing.T) {
	lexical := []*core.ScoredItem{
		scoredItem(1, "Only lexical", 1.0, "Matched in title"),
	}
	vector := []*core.ScoredItem{
		scoredItem(2, "Only vector", 1.0, "Semantic match"),
	}

	results := Fuse(lexical, vector, DefaultWeights(), 10)

	require.Len(t, results, 2)

	// Vector-only: 0.7*1.0 = 0.7 beats lexical-only: 0.3*1.0 = 0.3.
	// Under-coverage is penalized, not masked.
	assert.Equal(t, core.ID(2), results[0].Item.Id)
	assert.InDelta(t, 0.7, results[0].Score, 1e-9)
	assert.InDelta(t, 0.3, results[1].Score, 1e-9)
}

func TestFuse_Deterministic(t *testing.T) {
	lexical := []*core.ScoredItem{
		scoredItem(1, "One", 0.5, "Matched in title"),
		scoredItem(2, "Two", 0.5, "Matched in title"),
		scoredItem(3, "Three", 0.5, "Matched in title"),
	}
	vector := []*core.ScoredItem{
		scoredItem(4, "Four", 0.5, "Semantic match"),
		scoredItem(2, "Two", 0.5, "Semantic match"),
	}

	first := Fuse(lexical, vector, DefaultWeights(), 10)
	for i := 0; i < 10; i++ {
		again := Fuse(lexical, vector, DefaultWeights(), 10)
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, first[j].Item.Id, again[j].Item.Id)
			assert.Equal(t, first[j].Score, again[j].Score)
		}
	}
}

func TestFuse_TieBreakByLexicalThenVectorOrder(t *testing.T) {
	// All combined scores equal; ordering must follow lexical list order
	// first, then vector list order
	lexical := []*core.ScoredItem{
		scoredItem(5, "Lex first", 1.0, "Matched in title"),
		scoredItem(3, "Lex second", 1.0, "Matched in title"),
	}
	vector := []*core.ScoredItem{
		scoredItem(9, "Vec first", 1.0, "Semantic match"),
		scoredItem(7, "Vec second", 1.0, "Semantic match"),
	}

	weights := Weights{Vector: 0.5, Lexical: 0.5}
	results := Fuse(lexical, vector, weights, 10)

	require.Len(t, results, 4)
	assert.Equal(t, core.ID(5), results[0].Item.Id)
	assert.Equal(t, core.ID(3), results[1].Item.Id)
	assert.Equal(t, core.ID(9), results[2].Item.Id)
	assert.Equal(t, core.ID(7), results[3].Item.Id)
}

func TestFuse_LimitCap(t *testing.T) {
	var lexical []*core.ScoredItem
	for i := 1; i <= 10; i++ {
		lexical = append(lexical, scoredItem(core.ID(i), "Item", float64(i)/10, "Matched in title"))
	}

	results := Fuse(lexical, nil, DefaultWeights(), 3)

	assert.Len(t, results, 3)
}

func TestFuse_ReasonCombination(t *testing.T) {
	lexical := []*core.ScoredItem{
		scoredItem(1, "Both legs", 0.5, "Matched in title"),
	}
	vector := []*core.ScoredItem{
		scoredItem(1, "Both legs", 0.8, "Semantic match"),
		scoredItem(2, "Vector only", 0.6, "Semantic match"),
	}

	results := Fuse(lexical, vector, DefaultWeights(), 10)

	require.Len(t, results, 2)
	for _, res := range results {
		switch res.Item.Id {
		case 1:
			assert.Equal(t, "Matched in title; semantic match", res.Reason)
		case 2:
			assert.Equal(t, "Semantic match", res.Reason)
		}
	}
}

func TestFuse_EmptyInputs(t *testing.T) {
	assert.Empty(t, Fuse(nil, nil, DefaultWeights(), 10))
}

func TestFuse_ScoreClamped(t *testing.T) {
	lexical := []*core.ScoredItem{scoredItem(1, "Hot", 1.0, "Matched in title")}
	vector := []*core.ScoredItem{scoredItem(1, "Hot", 1.0, "Semantic match")}

	results := Fuse(lexical, vector, Weights{Vector: 0.9, Lexical: 0.9}, 10)

	require.Len(t, results, 1)
	assert.Equal(t, 1.0, results[0].Score)
}
