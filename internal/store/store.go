// Package store provides the file-backed memory collection.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rcliao/recall/internal/codec"
	"github.com/rcliao/recall/internal/embedding"
	"github.com/rcliao/recall/internal/errs"
	"github.com/rcliao/recall/internal/model"
)

// DefaultMaxItems is the capacity used when Config.MaxItems is zero.
const DefaultMaxItems = 5000

var (
	// ErrInvalidKind is returned when an item's kind is not in model.ValidKinds.
	ErrInvalidKind = errors.New("invalid kind")

	// ErrInvalidItem is returned when an item cannot be persisted as given.
	ErrInvalidItem = errors.New("invalid item")
)

// Config holds the parameters for opening a Store.
type Config struct {
	Path     string             // JSONL file, created if missing
	Embedder embedding.Embedder // required
	MaxItems int                // 0 means DefaultMaxItems
	Logger   *slog.Logger       // nil discards
	Now      func() time.Time   // nil means time.Now
}

// ListParams holds parameters for listing items.
type ListParams struct {
	Kind           model.Kind
	Tags           []string
	IncludeExpired bool
	Limit          *int // nil returns every match; otherwise floored to 1
}

// Limit returns a pointer to n for use in ListParams and SearchParams.
func Limit(n int) *int { return &n }

// Store is a memory collection persisted as one JSON record per line.
//
// Mutations are serialized by writeMu, which is held from reading the
// current records until the cache reflects what was written. Reads use the
// cached snapshot and never wait on a write in progress.
type Store struct {
	path     string
	embedder embedding.Embedder
	maxItems int
	log      *slog.Logger
	now      func() time.Time

	writeMu sync.Mutex

	mu    sync.RWMutex
	cache []codec.Record // nil until loaded
}

// New prepares a Store at cfg.Path, creating the parent directory and an
// empty file when needed. Records are loaded lazily on first access.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errs.New(errs.CodeStoreConfigInvalid, "store path is required")
	}
	if cfg.Embedder == nil {
		return nil, errs.New(errs.CodeStoreConfigInvalid, "store embedder is required")
	}
	if cfg.MaxItems < 0 {
		return nil, errs.Errorf(errs.CodeStoreConfigInvalid, "max items must be positive, got %d", cfg.MaxItems)
	}
	if cfg.MaxItems == 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreIOFailure, "create store dir")
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreIOFailure, "create store file")
	}
	if err := f.Close(); err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreIOFailure, "create store file")
	}

	return &Store{
		path:     cfg.Path,
		embedder: cfg.Embedder,
		maxItems: cfg.MaxItems,
		log:      cfg.Logger.With("store", cfg.Path),
		now:      cfg.Now,
	}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Embedder returns the embedder used for items and queries.
func (s *Store) Embedder() embedding.Embedder { return s.embedder }

// MaxItems returns the capacity bound.
func (s *Store) MaxItems() int { return s.maxItems }

func (s *Store) nowString() string {
	return model.Now(s.now())
}

func validateKind(k model.Kind) error {
	if k.Valid() {
		return nil
	}
	return errs.Wrap(ErrInvalidKind, errs.CodeStoreKindInvalid,
		fmt.Sprintf("kind %q is not one of: %s", k, model.KindList()),
		errs.Field("kind", string(k)))
}

func validateItem(it model.Item) error {
	if err := validateKind(it.Kind); err != nil {
		return err
	}
	if len(it.Source) > 0 && !json.Valid(it.Source) {
		return errs.Wrap(ErrInvalidItem, errs.CodeStoreItemInvalid, "source is not valid JSON",
			errs.Field("id", it.ID))
	}
	if len(it.Meta) > 0 && !json.Valid(it.Meta) {
		return errs.Wrap(ErrInvalidItem, errs.CodeStoreItemInvalid, "meta is not valid JSON",
			errs.Field("id", it.ID))
	}
	return nil
}
