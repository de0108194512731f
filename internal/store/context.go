package store

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rcliao/recall/internal/model"
)

// ContextParams holds parameters for context assembly.
type ContextParams struct {
	Query  string
	Kind   model.Kind
	Tags   []string
	Budget int // max tokens in output (rough proxy: 1 token ≈ 4 chars)
}

// ContextItem is a scored item for context output.
type ContextItem struct {
	ID      string     `json:"id"`
	Kind    model.Kind `json:"kind"`
	Text    string     `json:"text"`
	Score   float64    `json:"score"`
	Excerpt bool       `json:"excerpt,omitempty"`
}

// ContextResult is the assembled context response.
type ContextResult struct {
	Budget int           `json:"budget"`
	Used   int           `json:"used"`
	Items  []ContextItem `json:"items"`
}

const (
	defaultContextBudget = 4000
	contextCandidates    = 50
	minExcerptChars      = 100
)

// Context assembles the most relevant items within a token budget.
func (s *Store) Context(ctx context.Context, p ContextParams) (*ContextResult, error) {
	budget := p.Budget
	if budget <= 0 {
		budget = defaultContextBudget
	}
	charBudget := budget * 4

	results, err := s.Search(ctx, SearchParams{
		Query: p.Query,
		Kind:  p.Kind,
		Tags:  p.Tags,
		Limit: Limit(contextCandidates),
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	type scored struct {
		item  model.Item
		score float64
	}
	candidates := make([]scored, 0, len(results))
	for _, r := range results {
		// Recency: exponential decay on age in days.
		recency := 0.0
		if created, err := time.Parse(time.RFC3339Nano, r.Item.CreatedAt); err == nil {
			age := max(now.Sub(created).Hours()/24.0, 0)
			recency = math.Exp(-0.1 * age)
		}
		candidates = append(candidates, scored{item: r.Item, score: r.Score*0.7 + recency*0.3})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	// Greedy packing into budget
	result := &ContextResult{Budget: budget, Items: []ContextItem{}}
	used := 0
	for _, c := range candidates {
		text := c.item.Text
		score := math.Round(c.score*100) / 100
		if used+len(text) <= charBudget {
			result.Items = append(result.Items, ContextItem{
				ID: c.item.ID, Kind: c.item.Kind, Text: text, Score: score,
			})
			used += len(text)
			continue
		}
		if remaining := charBudget - used; remaining >= minExcerptChars {
			excerpt := truncateRunes(text, remaining) + "..."
			result.Items = append(result.Items, ContextItem{
				ID: c.item.ID, Kind: c.item.Kind, Text: excerpt, Score: score, Excerpt: true,
			})
			used += len(excerpt)
		}
		break
	}

	result.Used = used / 4
	return result, nil
}

// truncateRunes cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
