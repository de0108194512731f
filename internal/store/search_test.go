package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rcliao/recall/internal/embedding"
	"github.com/rcliao/recall/internal/model"
)

func TestSearch_Basic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Add(ctx, note("golang", "Go is a compiled language with goroutines"))
	s.Add(ctx, note("python", "Python is an interpreted language"))
	s.Add(ctx, note("rust", "Rust has a borrow checker"))

	results, err := s.Search(ctx, SearchParams{Query: "goroutines"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Item.ID != "golang" {
		t.Fatalf("expected golang first, got %s", results[0].Item.ID)
	}
}

func TestSearch_DeletedExcluded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Add(ctx, note("deleted", "this should not appear"))
	s.Delete(ctx, "deleted")

	results, err := s.Search(ctx, SearchParams{Query: "should not appear"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0, got %d", len(results))
	}
}

func TestSearch_EmptyStore(t *testing.T) {
	s := newTestStore(t)
	results, err := s.Search(context.Background(), SearchParams{Query: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil results, got %#v", results)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Add(ctx, model.Item{ID: "a", Kind: model.KindFact, Text: "hello", CreatedAt: "c"})
	s.Add(ctx, model.Item{ID: "b", Kind: model.KindFact, Text: "world", CreatedAt: "c"})
	s.Add(ctx, model.Item{ID: "c", Kind: model.KindDoc, Text: "test", CreatedAt: "c", ExpiresAt: past})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalItems != 3 || stats.ActiveItems != 2 || stats.ExpiredItems != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.Kinds[model.KindFact] != 2 || stats.Kinds[model.KindDoc] != 1 {
		t.Fatalf("unexpected kinds: %v", stats.Kinds)
	}
	if stats.SizeBytes == 0 {
		t.Fatal("expected non-zero file size")
	}
	if stats.Embedder != "hash-fnv1a-256" || stats.Dims != embedding.DefaultDims {
		t.Fatalf("unexpected embedder: %s/%d", stats.Embedder, stats.Dims)
	}
}

func TestExportImport(t *testing.T) {
	s1 := newTestStore(t)
	ctx := context.Background()

	s1.Add(ctx, note("a", "alpha"))
	expired := note("b", "beta")
	expired.ExpiresAt = past
	expired.Meta = json.RawMessage(`{"k":1}`)
	s1.Add(ctx, expired)

	exported, err := s1.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(exported) != 2 {
		t.Fatalf("expected 2 exported, got %d", len(exported))
	}

	s2 := newTestStore(t)
	n, err := s2.Import(ctx, exported)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 imported, got %d", n)
	}

	items, _ := s2.List(ctx, ListParams{IncludeExpired: true})
	if len(items) != 2 {
		t.Fatalf("expected 2 items after import, got %d", len(items))
	}
	if string(items[1].Meta) != `{"k":1}` {
		t.Fatalf("meta not preserved: %s", items[1].Meta)
	}
}
