package search

import "github.com/stashlabs/stash/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(ownerID, rawQuery string, mode Mode)
	AfterNormalize(q Query)
	AfterLexicalSearch(results []*core.ScoredItem)
	AfterVectorSearch(matches []*core.SimilarityMatch)
	VectorLegDegraded(err error)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string, _ Mode)                  {}
func (n *noopMonitor) AfterNormalize(_ Query)                     {}
func (n *noopMonitor) AfterLexicalSearch(_ []*core.ScoredItem)    {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.SimilarityMatch) {}
func (n *noopMonitor) VectorLegDegraded(_ error)                  {}
func (n *noopMonitor) Finish(_ *Result)                           {}
