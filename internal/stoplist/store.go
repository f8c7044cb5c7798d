// Package stoplist keeps the recently queried and favorite stop names.
package stoplist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

const (
	RecentKey    = "recentStops"
	FavoritesKey = "favorites"

	MaxRecent    = 5
	MaxFavorites = 10
)

// KV is the persistent key-value capability. *storage.DB implements it.
// GetValue returns "" for a missing key.
type KV interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error
}

// Store owns both lists. Every mutation is written through to the KV store
// before the method returns. If the write fails the in-memory list keeps the
// change and the error is returned.
type Store struct {
	mu        sync.Mutex
	kv        KV
	recent    []string
	favorites []string
	logger    *slog.Logger
}

// Load reads both lists from kv. Missing keys are empty lists; unreadable
// values are logged and treated as empty.
func Load(ctx context.Context, kv KV, logger *slog.Logger) (*Store, error) {
	s := &Store{kv: kv, logger: logger}

	var err error
	if s.recent, err = s.load(ctx, RecentKey, MaxRecent); err != nil {
		return nil, err
	}
	if s.favorites, err = s.load(ctx, FavoritesKey, MaxFavorites); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context, key string, limit int) ([]string, error) {
	raw, err := s.kv.GetValue(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if raw == "" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		s.logger.Warn("ignoring corrupt stop list", "key", key, "error", err)
		return nil, nil
	}
	// Stored data may predate the caps or carry duplicates.
	var out []string
	for _, n := range names {
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Recent returns the recent stops, most recent first.
func (s *Store) Recent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.recent)
}

// Favorites returns the favorite stops, most recently added first.
func (s *Store) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.favorites)
}

// IsFavorite reports whether name is a favorite.
func (s *Store) IsFavorite(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.favorites, name)
}

// RecordRecent moves name to the front of the recent list.
func (s *Store) RecordRecent(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = pushFront(s.recent, name, MaxRecent)
	return s.save(ctx, RecentKey, s.recent)
}

// ToggleFavorite removes name if it is a favorite and adds it at the front
// otherwise. It reports whether name is a favorite afterwards.
func (s *Store) ToggleFavorite(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := !slices.Contains(s.favorites, name)
	if added {
		s.favorites = pushFront(s.favorites, name, MaxFavorites)
	} else {
		s.favorites = remove(s.favorites, name)
	}
	return added, s.save(ctx, FavoritesKey, s.favorites)
}

// RemoveFavorite removes name from the favorites if present.
func (s *Store) RemoveFavorite(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites = remove(s.favorites, name)
	return s.save(ctx, FavoritesKey, s.favorites)
}

// ClearRecent empties the recent list and deletes its persisted key.
func (s *Store) ClearRecent(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = nil
	if err := s.kv.DeleteValue(ctx, RecentKey); err != nil {
		return fmt.Errorf("clear recent stops: %w", err)
	}
	return nil
}

// save must be called with s.mu held.
func (s *Store) save(ctx context.Context, key string, names []string) error {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.SetValue(ctx, key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// pushFront returns list with name first, without duplicates, capped at limit.
func pushFront(list []string, name string, limit int) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, name)
	for _, n := range list {
		if n != name {
			out = append(out, n)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func remove(list []string, name string) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
