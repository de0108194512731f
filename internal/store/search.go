package store

import (
	"context"
	"sort"

	"github.com/rcliao/recall/internal/errs"
	"github.com/rcliao/recall/internal/model"
	"github.com/rcliao/recall/internal/vecmath"
)

// DefaultSearchLimit is the number of results when SearchParams.Limit is nil.
const DefaultSearchLimit = 10

// SearchParams holds parameters for searching items.
type SearchParams struct {
	Query          string
	Kind           model.Kind
	Tags           []string
	IncludeExpired bool
	Limit          *int // nil means DefaultSearchLimit; otherwise floored to 1
}

// SearchResult wraps an item with its similarity score in [0, 1].
type SearchResult struct {
	Item  model.Item `json:"item"`
	Score float64    `json:"score"`
}

// Search ranks matching items by similarity between their embeddings and
// the query's. Scores assume the embedder returns unit vectors; the clamp to
// [0, 1] only bounds them.
func (s *Store) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := DefaultSearchLimit
	if p.Limit != nil {
		limit = max(*p.Limit, 1)
	}

	q, err := s.embedder.Embed(ctx, p.Query)
	if err != nil {
		code := errs.CodeOf(err)
		if code == "" {
			code = errs.CodeEmbedUpstreamFailure
		}
		return nil, errs.Wrap(err, code, "embed query")
	}

	recs, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	now := s.nowString()

	results := []SearchResult{}
	for _, r := range recs {
		if !matches(r, p.Kind, p.Tags, p.IncludeExpired, now) {
			continue
		}
		results = append(results, SearchResult{
			Item:  r.Item,
			Score: vecmath.Score(vecmath.Similarity(q, r.Embedding)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Item = results[i].Item.Clone()
	}

	s.log.DebugContext(ctx, "search completed", "limit", limit, "results", len(results))
	return results, nil
}
