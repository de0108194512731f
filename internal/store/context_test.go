package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rcliao/recall/internal/model"
)

func TestContextBasic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Add(ctx, note("go-lang", "Go is a statically typed language"))
	s.Add(ctx, note("rust-lang", "Rust is a systems language with borrow checker"))
	s.Add(ctx, note("python-lang", "Python is a dynamic language popular for ML"))

	result, err := s.Context(ctx, ContextParams{Query: "language", Budget: 4000})
	if err != nil {
		t.Fatalf("context: %v", err)
	}

	if len(result.Items) != 3 {
		t.Fatalf("expected 3 items in context, got %d", len(result.Items))
	}
	if result.Budget != 4000 {
		t.Errorf("expected budget 4000, got %d", result.Budget)
	}
	if result.Used == 0 {
		t.Error("expected non-zero used tokens")
	}
}

func TestContextDefaultBudget(t *testing.T) {
	s := newTestStore(t)
	result, err := s.Context(context.Background(), ContextParams{Query: "anything"})
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if result.Budget != defaultContextBudget {
		t.Errorf("expected default budget %d, got %d", defaultContextBudget, result.Budget)
	}
}

func TestContextBudgetLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	longContent := strings.Repeat("This is a line about programming languages and their features. ", 100)
	s.Add(ctx, note("big", longContent))
	s.Add(ctx, note("small", "Go is great for programming"))

	// ~200 chars
	result, err := s.Context(ctx, ContextParams{Query: "programming", Budget: 50})
	if err != nil {
		t.Fatalf("context: %v", err)
	}

	if len(result.Items) == 0 {
		t.Fatal("expected at least one item even with small budget")
	}
	total := 0
	for _, it := range result.Items {
		total += len(it.Text)
		if it.ID == "big" && !it.Excerpt {
			t.Error("expected the large item to be an excerpt")
		}
	}
	if total > 50*4+len("...") {
		t.Errorf("context exceeds budget: %d chars", total)
	}
}

func TestContextEmpty(t *testing.T) {
	s := newTestStore(t)

	result, err := s.Context(context.Background(), ContextParams{Query: "nothing here", Budget: 4000})
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("expected empty items, got %d", len(result.Items))
	}
}

func TestContextRecencyBoosting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := note("old", "notes about coding")
	old.CreatedAt = model.Now(testNow.Add(-90 * 24 * time.Hour))
	s.Add(ctx, old)
	s.Add(ctx, note("fresh", "notes about coding"))

	result, err := s.Context(ctx, ContextParams{Query: "coding", Budget: 4000})
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if len(result.Items) < 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if result.Items[0].ID != "fresh" {
		t.Errorf("expected fresh first, got %s", result.Items[0].ID)
	}
}

func TestTruncateRunes(t *testing.T) {
	got := truncateRunes("héllo", 2)
	if got != "h" {
		t.Errorf("expected %q, got %q", "h", got)
	}
	if got := truncateRunes("abc", 10); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}
