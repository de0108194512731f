package store

import (
	"context"
	"os"

	"github.com/rcliao/recall/internal/model"
)

// Stats holds collection statistics.
type Stats struct {
	Path         string             `json:"path"`
	SizeBytes    int64              `json:"size_bytes"`
	Embedder     string             `json:"embedder"`
	Dims         int                `json:"dims"`
	MaxItems     int                `json:"max_items"`
	TotalItems   int                `json:"total_items"`
	ActiveItems  int                `json:"active_items"`
	ExpiredItems int                `json:"expired_items"`
	Kinds        map[model.Kind]int `json:"kinds"`
}

// Stats returns collection statistics. Expired items are counted per kind.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	recs, err := s.records(ctx)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		Path:     s.path,
		Embedder: s.embedder.ID(),
		Dims:     s.embedder.Dims(),
		MaxItems: s.maxItems,
		Kinds:    map[model.Kind]int{},
	}
	if info, err := os.Stat(s.path); err == nil {
		st.SizeBytes = info.Size()
	}

	now := s.nowString()
	for _, r := range recs {
		st.TotalItems++
		st.Kinds[r.Item.Kind]++
		if r.Item.Expired(now) {
			st.ExpiredItems++
		} else {
			st.ActiveItems++
		}
	}
	return st, nil
}
