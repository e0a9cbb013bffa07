// Package pathstore keeps the collection of saved learning paths under a
// single KV key. Every write re-serializes the whole collection.
package pathstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/skillroute/internal/paths"
	"github.com/abhisek/skillroute/internal/store"
)

// Store is the durable collection of learning paths.
type Store struct {
	kv  store.KV
	key string
	log *zap.Logger

	// mu serializes read-modify-write cycles.
	mu sync.Mutex
}

// New creates a Store over kv using paths.StorageKey.
func New(kv store.KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, key: paths.StorageKey, log: log}
}

// List returns all saved paths in insertion order. Missing, unreadable or
// corrupt data yields an empty slice.
func (s *Store) List(ctx context.Context) []paths.LearningPath {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// ListNewestFirst returns all saved paths sorted by CreatedAt descending.
func (s *Store) ListNewestFirst(ctx context.Context) []paths.LearningPath {
	all := s.List(ctx)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt > all[j].CreatedAt
	})
	return all
}

// GetByID returns the path with id, if present.
func (s *Store) GetByID(ctx context.Context, id string) (*paths.LearningPath, bool) {
	for _, p := range s.List(ctx) {
		if p.ID == id {
			return &p, true
		}
	}
	return nil, false
}

// Insert appends p. Callers supply a fresh id.
func (s *Store) Insert(ctx context.Context, p *paths.LearningPath) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load(ctx)
	all = append(all, *p.Clone())
	return s.save(ctx, all)
}

// Update replaces the path whose id matches p.ID. Unknown ids are a no-op.
func (s *Store) Update(ctx context.Context, p *paths.LearningPath) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load(ctx)
	for i := range all {
		if all[i].ID == p.ID {
			all[i] = *p.Clone()
			return s.save(ctx, all)
		}
	}
	s.log.Debug("update of unknown path ignored", zap.String("path_id", p.ID))
	return nil
}

// Mutate loads the path with id, applies fn to it and saves the result,
// all under the store lock, so concurrent mutations of one path never
// overwrite each other. It returns a copy of the saved path. An unknown id
// returns (nil, nil) without calling fn; an error from fn leaves the store
// unchanged.
func (s *Store) Mutate(ctx context.Context, id string, fn func(*paths.LearningPath) error) (*paths.LearningPath, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load(ctx)
	for i := range all {
		if all[i].ID != id {
			continue
		}
		next := all[i].Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		all[i] = *next
		if err := s.save(ctx, all); err != nil {
			return nil, err
		}
		return next.Clone(), nil
	}
	s.log.Debug("mutation of unknown path ignored", zap.String("path_id", id))
	return nil, nil
}

// Delete removes the path with id. Unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load(ctx)
	kept := all[:0]
	for _, p := range all {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(all) {
		s.log.Debug("delete of unknown path ignored", zap.String("path_id", id))
		return nil
	}
	return s.save(ctx, kept)
}

func (s *Store) load(ctx context.Context) []paths.LearningPath {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("read saved paths failed", zap.Error(err))
		return []paths.LearningPath{}
	}
	if !ok || raw == "" {
		return []paths.LearningPath{}
	}

	var all []paths.LearningPath
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		s.log.Warn("saved paths are corrupt, treating as empty", zap.Error(err))
		return []paths.LearningPath{}
	}
	if all == nil {
		all = []paths.LearningPath{}
	}
	return all
}

func (s *Store) save(ctx context.Context, all []paths.LearningPath) error {
	data, err := json.Marshal(all)
	if err != nil {
		s.log.Error("encode saved paths failed", zap.Error(err))
		return fmt.Errorf("encode paths: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		s.log.Error("write saved paths failed", zap.Error(err))
		return fmt.Errorf("write paths: %w", err)
	}
	return nil
}
