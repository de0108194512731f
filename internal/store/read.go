package store

import (
	"context"

	"github.com/rcliao/recall/internal/codec"
	"github.com/rcliao/recall/internal/model"
)

// Get returns the first unexpired item with the given id. ok is false when
// there is none.
func (s *Store) Get(ctx context.Context, id string) (item model.Item, ok bool, err error) {
	recs, err := s.records(ctx)
	if err != nil {
		return model.Item{}, false, err
	}
	now := s.nowString()
	for _, r := range recs {
		if r.Item.ID != id {
			continue
		}
		if r.Item.Expired(now) {
			continue
		}
		return r.Item.Clone(), true, nil
	}
	return model.Item{}, false, nil
}

// List returns the matching items in insertion order. With a limit only the
// most recent matches are kept.
func (s *Store) List(ctx context.Context, p ListParams) ([]model.Item, error) {
	recs, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	now := s.nowString()

	items := []model.Item{}
	for _, r := range recs {
		if !matches(r, p.Kind, p.Tags, p.IncludeExpired, now) {
			continue
		}
		items = append(items, r.Item.Clone())
	}

	if p.Limit != nil {
		limit := max(*p.Limit, 1)
		if len(items) > limit {
			items = items[len(items)-limit:]
		}
	}
	return items, nil
}

func matches(r codec.Record, kind model.Kind, tags []string, includeExpired bool, now string) bool {
	if kind != "" && r.Item.Kind != kind {
		return false
	}
	if !r.Item.HasTags(tags) {
		return false
	}
	if !includeExpired && r.Item.Expired(now) {
		return false
	}
	return true
}
