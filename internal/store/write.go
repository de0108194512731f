package store

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/recall/internal/codec"
	"github.com/rcliao/recall/internal/errs"
	"github.com/rcliao/recall/internal/model"
)

// Add stores an item, computing its embedding from the text. The kind is
// validated before any embedding or file work.
func (s *Store) Add(ctx context.Context, item model.Item) error {
	if err := validateItem(item); err != nil {
		return err
	}

	vec, err := s.embedder.Embed(ctx, item.Text)
	if err != nil {
		return embedErr(err, item.ID)
	}
	rec := codec.Record{Item: item.Clone(), Embedding: vec}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.records(ctx)
	if err != nil {
		return err
	}
	if err := s.commit(ctx, current, []codec.Record{rec}); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "item added", "id", item.ID, "kind", item.Kind)
	return nil
}

// AddMany stores items in order with a single append. Every item is
// validated first; one invalid item rejects the whole batch.
func (s *Store) AddMany(ctx context.Context, items []model.Item) error {
	for _, it := range items {
		if err := validateItem(it); err != nil {
			return err
		}
	}
	if len(items) == 0 {
		return nil
	}

	recs := make([]codec.Record, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, it := range items {
		i, it := i, it
		g.Go(func() error {
			vec, err := s.embedder.Embed(gctx, it.Text)
			if err != nil {
				return embedErr(err, it.ID)
			}
			recs[i] = codec.Record{Item: it.Clone(), Embedding: vec}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.records(ctx)
	if err != nil {
		return err
	}
	if err := s.commit(ctx, current, recs); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "items added", "count", len(recs))
	return nil
}

// Update merges patch into the first item with the given id, expired or
// not. The id never changes. The embedding is recomputed only when the
// text changes. ok is false when no item has the id.
func (s *Store) Update(ctx context.Context, id string, patch model.Patch) (item model.Item, ok bool, err error) {
	if patch.Kind != nil {
		if err := validateKind(*patch.Kind); err != nil {
			return model.Item{}, false, err
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.records(ctx)
	if err != nil {
		return model.Item{}, false, err
	}
	idx := slices.IndexFunc(current, func(r codec.Record) bool { return r.Item.ID == id })
	if idx < 0 {
		return model.Item{}, false, nil
	}

	old := current[idx]
	merged := patch.Apply(old.Item)
	merged.ID = old.Item.ID
	if err := validateItem(merged); err != nil {
		return model.Item{}, false, err
	}

	vec := old.Embedding
	if patch.Text != nil && *patch.Text != old.Item.Text {
		vec, err = s.embedder.Embed(ctx, merged.Text)
		if err != nil {
			return model.Item{}, false, embedErr(err, id)
		}
	}

	next := cloneRecords(current)
	next[idx] = codec.Record{Item: merged, Embedding: vec}
	if err := s.replace(next); err != nil {
		return model.Item{}, false, err
	}
	s.log.DebugContext(ctx, "item updated", "id", id)
	return merged.Clone(), true, nil
}

// Delete removes every item with the given id and reports whether any
// were removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.records(ctx)
	if err != nil {
		return false, err
	}
	next := slices.DeleteFunc(cloneRecords(current), func(r codec.Record) bool { return r.Item.ID == id })
	if len(next) == len(current) {
		return false, nil
	}
	if err := s.replace(next); err != nil {
		return false, err
	}
	s.log.DebugContext(ctx, "item deleted", "id", id, "removed", len(current)-len(next))
	return true, nil
}

// PurgeExpired removes every item whose expiry is at or before now and
// returns how many were removed. The file is untouched when none are.
func (s *Store) PurgeExpired(ctx context.Context) (int, error) {
	now := s.nowString()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.records(ctx)
	if err != nil {
		return 0, err
	}
	next := slices.DeleteFunc(cloneRecords(current), func(r codec.Record) bool { return r.Item.Expired(now) })
	removed := len(current) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := s.replace(next); err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "purged expired items", "removed", removed, "count", len(next))
	return removed, nil
}

func embedErr(err error, id string) error {
	code := errs.CodeOf(err)
	if code == "" {
		code = errs.CodeEmbedUpstreamFailure
	}
	return errs.Wrap(err, code, "embed item", errs.Field("id", id))
}
