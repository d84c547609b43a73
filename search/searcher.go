package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/stashlabs/stash/ai"
	"github.com/stashlabs/stash/core"
	"github.com/stashlabs/stash/storage"
)

// Mode selects which retrieval legs a search runs.
type Mode string

const (
	// ModeLexical runs substring matching only.
	ModeLexical Mode = "lexical"

	// ModeSemantic runs vector similarity only. Provider or index failures
	// fail the whole search; semantic mode has no fallback.
	ModeSemantic Mode = "semantic"

	// ModeHybrid runs both legs concurrently and fuses their scores.
	// If the vector leg fails, hybrid degrades to lexical-only results.
	ModeHybrid Mode = "hybrid"
)

const (
	// DefaultLimit caps results when the caller doesn't specify a limit.
	DefaultLimit = 20

	// DefaultEmbedTimeout bounds how long the vector leg waits for the
	// embedding provider before that leg is treated as failed.
	DefaultEmbedTimeout = 5 * time.Second
)

// Result is the outcome of one search call. Degraded is set when a hybrid
// search lost its vector leg and fell back to lexical-only ranking.
type Result struct {
	Items    []*core.ScoredItem
	Degraded bool
}

// Searcher is the retrieval entry point. It normalizes queries, dispatches
// the lexical and vector legs per mode, and fuses their scores.
type Searcher struct {
	items        storage.ItemRepository
	embeddings   storage.EmbeddingRepository
	embedder     ai.Embedder
	lexical      *LexicalMatcher
	weights      Weights
	embedTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithWeights overrides the fusion weights.
func WithWeights(w Weights) Option {
	return func(s *Searcher) error {
		if w.Vector < 0 || w.Lexical < 0 {
			return fmt.Errorf("fusion weights must be non-negative: %+v", w)
		}
		s.weights = w
		return nil
	}
}

// WithEmbedTimeout overrides the embedding provider timeout for the
// vector leg.
func WithEmbedTimeout(d time.Duration) Option {
	return func(s *Searcher) error {
		if d <= 0 {
			return fmt.Errorf("embed timeout must be positive: %v", d)
		}
		s.embedTimeout = d
		return nil
	}
}

// WithClock overrides the time source used for relative date filters.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Searcher) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	items storage.ItemRepository,
	embeddings storage.EmbeddingRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		items:        items,
		embeddings:   embeddings,
		embedder:     provider.Embedder(),
		weights:      DefaultWeights(),
		embedTimeout: DefaultEmbedTimeout,
		now:          time.Now,
		logger:       slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.lexical = NewLexicalMatcher(items, s.logger)

	return s, nil
}

// Search runs a search for one owner. Mode defaults to hybrid, limit to
// DefaultLimit. Returns up to limit results ranked by relevance.
func (s *Searcher) Search(ctx context.Context, ownerID, rawQuery string, mode Mode, limit int) (*Result, error) {
	return s.SearchWithMonitor(ctx, ownerID, rawQuery, mode, limit, nil)
}

// SearchWithMonitor runs a search with observation hooks.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, ownerID, rawQuery string, mode Mode, limit int, monitor SearchMonitor) (*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if mode == "" {
		mode = ModeHybrid
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	monitor.Start(ownerID, rawQuery, mode)

	q := Normalize(rawQuery, s.now())
	monitor.AfterNormalize(q)

	if q.IsEmpty() {
		return nil, ErrEmptyQuery
	}

	var (
		result *Result
		err    error
	)
	switch mode {
	case ModeLexical:
		result, err = s.searchLexical(ctx, ownerID, q, limit, monitor)
	case ModeSemantic:
		result, err = s.searchSemantic(ctx, ownerID, q, limit, monitor)
	case ModeHybrid:
		result, err = s.searchHybrid(ctx, ownerID, q, limit, monitor)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if err != nil {
		return nil, err
	}

	monitor.Finish(result)
	return result, nil
}

// searchLexical runs the lexical leg alone and sorts by score descending.
func (s *Searcher) searchLexical(ctx context.Context, ownerID string, q Query, limit int, monitor SearchMonitor) (*Result, error) {
	results, err := s.lexical.Match(ctx, ownerID, q, limit)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	monitor.AfterLexicalSearch(results)

	sortByScore(results)
	if len(results) > limit {
		results = results[:limit]
	}

	return &Result{Items: results}, nil
}

// searchSemantic runs the vector leg alone. Any failure propagates; semantic
// mode promises vector-only ranking with no fallback.
func (s *Searcher) searchSemantic(ctx context.Context, ownerID string, q Query, limit int, monitor SearchMonitor) (*Result, error) {
	if q.Text == "" {
		return nil, ErrEmptyQuery
	}

	results, err := s.vectorLeg(ctx, ownerID, q.Text, limit, monitor)
	if err != nil {
		return nil, err
	}

	return &Result{Items: results}, nil
}

// legOutcome carries one concurrent leg's results back to the orchestrator.
type legOutcome struct {
	results []*core.ScoredItem
	err     error
}

// searchHybrid runs both legs concurrently and fuses their scores. A vector
// leg failure degrades the search to lexical-only; a lexical failure is
// fatal since hybrid has no other fallback.
func (s *Searcher) searchHybrid(ctx context.Context, ownerID string, q Query, limit int, monitor SearchMonitor) (*Result, error) {
	// Filter-only queries have nothing to embed; the lexical leg is the
	// whole result set and keeps its native scores
	if q.Text == "" {
		return s.searchLexical(ctx, ownerID, q, limit, monitor)
	}

	lexCh := make(chan legOutcome, 1)
	vecCh := make(chan legOutcome, 1)

	go func() {
		results, err := s.lexical.Match(ctx, ownerID, q, 0)
		lexCh <- legOutcome{results: results, err: err}
	}()

	go func() {
		results, err := s.vectorLeg(ctx, ownerID, q.Text, limit, monitor)
		vecCh <- legOutcome{results: results, err: err}
	}()

	lex := <-lexCh
	vec := <-vecCh

	if lex.err != nil {
		if vec.err != nil {
			return nil, fmt.Errorf("%w (lexical: %v; vector: %v)", ErrNoSearchSignal, lex.err, vec.err)
		}
		return nil, fmt.Errorf("lexical search: %w", lex.err)
	}
	monitor.AfterLexicalSearch(lex.results)

	if vec.err != nil {
		s.logger.Warn("vector leg failed, degrading to lexical-only",
			"owner", ownerID, "err", vec.err)
		monitor.VectorLegDegraded(vec.err)

		results := lex.results
		sortByScore(results)
		if len(results) > limit {
			results = results[:limit]
		}
		return &Result{Items: results, Degraded: true}, nil
	}

	return &Result{Items: Fuse(lex.results, vec.results, s.weights, limit)}, nil
}

// vectorLeg embeds the query text and runs the owner-scoped similarity
// query, resolving matches to full items in match order.
func (s *Searcher) vectorLeg(ctx context.Context, ownerID, text string, k int, monitor SearchMonitor) ([]*core.ScoredItem, error) {
	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	vector, err := s.embedder.EmbedText(embedCtx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w: %w", ErrEmbeddingFailed, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("embedding query: %w: provider returned empty vector", ErrEmbeddingFailed)
	}

	matches, err := s.embeddings.QueryNearest(ctx, ownerID, vector, k)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	monitor.AfterVectorSearch(matches)

	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]core.ID, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match.ItemId)
	}

	items, err := s.items.GetItems(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("resolving matched items: %w", err)
	}

	byID := make(map[core.ID]*core.Item, len(items))
	for _, item := range items {
		byID[item.Id] = item
	}

	// Preserve match order; drop matches whose item vanished between the
	// index query and the lookup
	results := make([]*core.ScoredItem, 0, len(matches))
	for _, match := range matches {
		item, ok := byID[match.ItemId]
		if !ok {
			continue
		}
		results = append(results, &core.ScoredItem{
			Item:   item,
			Score:  match.Score,
			Reason: "Semantic match",
		})
	}

	return results, nil
}

// sortByScore sorts results by score descending, preserving input order
// for ties.
func sortByScore(results []*core.ScoredItem) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
