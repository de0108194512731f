package store

import (
	"context"

	"github.com/rcliao/recall/internal/model"
)

// Export returns every item in file order, expired ones included.
func (s *Store) Export(ctx context.Context) ([]model.Item, error) {
	recs, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]model.Item, len(recs))
	for i, r := range recs {
		items[i] = r.Item.Clone()
	}
	return items, nil
}

// Import stores items from an export as one batch. Embeddings are
// recomputed with this store's embedder.
func (s *Store) Import(ctx context.Context, items []model.Item) (int, error) {
	if err := s.AddMany(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}
