package stoplist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memKV is an in-memory KV.
type memKV struct {
	data    map[string]string
	failSet bool
}

func newMemKV() *memKV { return &memKV{data: make(map[string]string)} }

func (m *memKV) GetValue(_ context.Context, key string) (string, error) {
	return m.data[key], nil
}

func (m *memKV) SetValue(_ context.Context, key, value string) error {
	if m.failSet {
		return errors.New("disk full")
	}
	m.data[key] = value
	return nil
}

func (m *memKV) DeleteValue(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func load(t *testing.T, kv KV) *Store {
	t.Helper()
	s, err := Load(context.Background(), kv, testLogger)
	require.NoError(t, err)
	return s
}

func TestLoad_MissingKeysAreEmpty(t *testing.T) {
	s := load(t, newMemKV())
	assert.Empty(t, s.Recent())
	assert.Empty(t, s.Favorites())
}

func TestLoad_CorruptValueIsEmpty(t *testing.T) {
	kv := newMemKV()
	kv.data[RecentKey] = "{not json"
	kv.data[FavoritesKey] = `["Borstei","Borstei","Romanplatz"]`

	s := load(t, kv)
	assert.Empty(t, s.Recent())
	assert.Equal(t, []string{"Borstei", "Romanplatz"}, s.Favorites())
}

func TestRecordRecent_MoveToFront(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := load(t, kv)

	require.NoError(t, s.RecordRecent(ctx, "Borstei"))
	require.NoError(t, s.RecordRecent(ctx, "Romanplatz"))
	require.NoError(t, s.RecordRecent(ctx, "Borstei"))
	require.NoError(t, s.RecordRecent(ctx, "Borstei"))

	assert.Equal(t, []string{"Borstei", "Romanplatz"}, s.Recent())
	assert.JSONEq(t, `["Borstei","Romanplatz"]`, kv.data[RecentKey], "written through")
}

func TestRecordRecent_Cap(t *testing.T) {
	ctx := context.Background()
	s := load(t, newMemKV())

	for i := 1; i <= 7; i++ {
		require.NoError(t, s.RecordRecent(ctx, fmt.Sprintf("Stop %d", i)))
	}
	assert.Equal(t, []string{"Stop 7", "Stop 6", "Stop 5", "Stop 4", "Stop 3"}, s.Recent())

	// Re-adding an existing name dedupes before truncating.
	require.NoError(t, s.RecordRecent(ctx, "Stop 3"))
	assert.Equal(t, []string{"Stop 3", "Stop 7", "Stop 6", "Stop 5", "Stop 4"}, s.Recent())
}

func TestToggleFavorite_Involution(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := load(t, kv)

	_, err := s.ToggleFavorite(ctx, "Borstei")
	require.NoError(t, err)
	_, err = s.ToggleFavorite(ctx, "Romanplatz")
	require.NoError(t, err)
	before := s.Favorites()

	added, err := s.ToggleFavorite(ctx, "Marienplatz")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "Marienplatz", s.Favorites()[0])

	added, err = s.ToggleFavorite(ctx, "Marienplatz")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, before, s.Favorites())
	assert.JSONEq(t, `["Romanplatz","Borstei"]`, kv.data[FavoritesKey])
}

func TestToggleFavorite_Cap(t *testing.T) {
	ctx := context.Background()
	s := load(t, newMemKV())

	for i := 0; i < 12; i++ {
		_, err := s.ToggleFavorite(ctx, fmt.Sprintf("Stop %d", i))
		require.NoError(t, err)
	}
	favs := s.Favorites()
	assert.Len(t, favs, MaxFavorites)
	assert.Equal(t, "Stop 11", favs[0])
	assert.False(t, s.IsFavorite("Stop 0"))
	assert.False(t, s.IsFavorite("Stop 1"))
	assert.True(t, s.IsFavorite("Stop 2"))
}

func TestRemoveFavorite(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := load(t, kv)

	_, err := s.ToggleFavorite(ctx, "Borstei")
	require.NoError(t, err)
	require.NoError(t, s.RemoveFavorite(ctx, "Romanplatz"), "missing name is a no-op")
	assert.Equal(t, []string{"Borstei"}, s.Favorites())

	require.NoError(t, s.RemoveFavorite(ctx, "Borstei"))
	assert.Empty(t, s.Favorites())
	assert.Equal(t, "[]", kv.data[FavoritesKey])
}

func TestClearRecent_DeletesKey(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := load(t, kv)

	require.NoError(t, s.RecordRecent(ctx, "Borstei"))
	require.NoError(t, s.ClearRecent(ctx))

	assert.Empty(t, s.Recent())
	_, ok := kv.data[RecentKey]
	assert.False(t, ok)
}

func TestPersistAcrossLoads(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := load(t, kv)

	require.NoError(t, s.RecordRecent(ctx, "Borstei"))
	_, err := s.ToggleFavorite(ctx, "Romanplatz")
	require.NoError(t, err)

	reloaded := load(t, kv)
	assert.Equal(t, []string{"Borstei"}, reloaded.Recent())
	assert.Equal(t, []string{"Romanplatz"}, reloaded.Favorites())
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	kv := newMemKV()
	kv.failSet = true
	s := load(t, kv)

	err := s.RecordRecent(context.Background(), "Borstei")
	assert.Error(t, err)
	assert.Equal(t, []string{"Borstei"}, s.Recent())
}

func TestCapsHoldUnderRandomOperations(t *testing.T) {
	ctx := context.Background()
	s := load(t, newMemKV())
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i++ {
		name := fmt.Sprintf("Stop %d", rng.Intn(25))
		switch rng.Intn(4) {
		case 0:
			require.NoError(t, s.RecordRecent(ctx, name))
		case 1:
			_, err := s.ToggleFavorite(ctx, name)
			require.NoError(t, err)
		case 2:
			require.NoError(t, s.RemoveFavorite(ctx, name))
		case 3:
			if rng.Intn(10) == 0 {
				require.NoError(t, s.ClearRecent(ctx))
			}
		}
		recent, favs := s.Recent(), s.Favorites()
		require.LessOrEqual(t, len(recent), MaxRecent)
		require.LessOrEqual(t, len(favs), MaxFavorites)
		require.Equal(t, len(recent), len(unique(recent)))
		require.Equal(t, len(favs), len(unique(favs)))
	}
}

func unique(list []string) map[string]bool {
	m := make(map[string]bool)
	for _, n := range list {
		m[n] = true
	}
	return m
}
