package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"

	"github.com/rcliao/recall/internal/codec"
	"github.com/rcliao/recall/internal/errs"
)

// records returns the cached snapshot, loading it from disk on first use.
// Callers must not modify the returned slice.
func (s *Store) records(ctx context.Context) ([]codec.Record, error) {
	s.mu.RLock()
	cached := s.cache
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	recs, err := s.readFile(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		s.cache = recs
	}
	return s.cache, nil
}

func (s *Store) readFile(ctx context.Context) ([]codec.Record, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []codec.Record{}, nil
	}
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreIOFailure, "load records")
	}
	defer f.Close()

	recs, skipped, err := codec.DecodeAll(f)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreIOFailure, "load records")
	}
	if skipped > 0 {
		s.log.WarnContext(ctx, "skipped invalid lines", "skipped", skipped, "loaded", len(recs))
	}
	s.log.DebugContext(ctx, "records loaded", "count", len(recs))
	if recs == nil {
		recs = []codec.Record{}
	}
	return recs, nil
}

func (s *Store) setCache(recs []codec.Record) {
	if recs == nil {
		recs = []codec.Record{}
	}
	s.mu.Lock()
	s.cache = recs
	s.mu.Unlock()
}

// commit persists next, which is current with added appended, and installs
// it as the cache. When next exceeds the capacity the oldest records are
// dropped and the file is rewritten; otherwise only added is appended.
func (s *Store) commit(ctx context.Context, current, added []codec.Record) error {
	next := make([]codec.Record, 0, len(current)+len(added))
	next = append(next, current...)
	next = append(next, added...)

	if over := len(next) - s.maxItems; over > 0 {
		next = next[over:]
		if err := s.rewrite(next); err != nil {
			return err
		}
		s.log.InfoContext(ctx, "evicted oldest records", "evicted", over, "count", len(next))
		s.setCache(next)
		return nil
	}

	if err := s.appendRecords(added); err != nil {
		return err
	}
	s.setCache(next)
	return nil
}

// appendRecords writes recs to the end of the file with a single write.
// A missing trailing newline left by an interrupted append is repaired
// first so the new records start on their own line.
func (s *Store) appendRecords(recs []codec.Record) error {
	data, err := codec.EncodeAll(recs)
	if err != nil {
		return errs.Wrap(err, errs.CodeStoreItemInvalid, "encode records")
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return errs.Wrap(err, errs.CodeStoreIOFailure, "open for append")
	}

	if info, err := f.Stat(); err == nil && info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err == nil && last[0] != '\n' {
			data = append([]byte{'\n'}, data...)
		}
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return errs.Wrap(err, errs.CodeStoreIOFailure, "append records")
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(err, errs.CodeStoreIOFailure, "append records")
	}
	return nil
}

// rewrite replaces the file with recs via a temporary file and rename.
func (s *Store) rewrite(recs []codec.Record) error {
	data, err := codec.EncodeAll(recs)
	if err != nil {
		return errs.Wrap(err, errs.CodeStoreItemInvalid, "encode records")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errs.Wrap(err, errs.CodeStoreIOFailure, "create temp file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errs.Wrap(err, errs.CodeStoreIOFailure, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errs.Wrap(err, errs.CodeStoreIOFailure, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errs.Wrap(err, errs.CodeStoreIOFailure, "close temp file")
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return errs.Wrap(err, errs.CodeStoreIOFailure, "chmod temp file")
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return errs.Wrap(err, errs.CodeStoreIOFailure, "replace store file")
	}
	return nil
}

// replace rewrites the file with recs and installs them as the cache.
func (s *Store) replace(recs []codec.Record) error {
	if err := s.rewrite(recs); err != nil {
		return err
	}
	s.setCache(recs)
	return nil
}

// cloneRecords copies the slice header array so callers can edit elements
// without touching the shared snapshot.
func cloneRecords(recs []codec.Record) []codec.Record {
	return slices.Clone(recs)
}
