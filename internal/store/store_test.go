package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/foogie/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	CompareAndSwap(ctx context.Context, key string, prev, next []byte) (bool, error)
	Delete(ctx context.Context, key string) error
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "foogie.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func backends(t *testing.T) map[string]kv {
	return map[string]kv{
		"sqlite": openTemp(t),
		"memory": NewMemStore(),
	}
}

func TestGetMissingKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "nope")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, "k", []byte(`{"a":1}`)))
			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `{"a":1}`, string(got))

			require.NoError(t, s.Put(ctx, "k", []byte(`{"a":2}`)))
			got, err = s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `{"a":2}`, string(got))

			require.NoError(t, s.Delete(ctx, "k"))
			_, err = s.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := s.CompareAndSwap(ctx, "k", nil, []byte("v1"))
			require.NoError(t, err)
			assert.True(t, ok, "create on missing key")

			ok, err = s.CompareAndSwap(ctx, "k", nil, []byte("v2"))
			require.NoError(t, err)
			assert.False(t, ok, "create must fail once the key exists")

			ok, err = s.CompareAndSwap(ctx, "k", []byte("stale"), []byte("v2"))
			require.NoError(t, err)
			assert.False(t, ok, "swap with stale prev")

			ok, err = s.CompareAndSwap(ctx, "k", []byte("v1"), []byte("v2"))
			require.NoError(t, err)
			assert.True(t, ok)

			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v2", string(got))
		})
	}
}

func TestArchiveHistory(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	for _, d := range []string{"2026-10-16", "2026-10-18", "2026-10-17"} {
		require.NoError(t, s.ArchiveDay(ctx, model.DayRecord{
			Date:          d,
			Goal:          2000,
			MealCount:     1,
			TotalCalories: 500,
			Meals:         []model.MealEntry{{Name: "oats", Calories: 500, Servings: 1}},
		}))
	}

	all, err := s.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2026-10-18", all[0].Date)
	assert.Equal(t, "2026-10-16", all[2].Date)
	require.Len(t, all[0].Meals, 1)
	assert.Equal(t, "oats", all[0].Meals[0].Name)

	two, err := s.History(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestMemStoreHistoryOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	require.NoError(t, m.ArchiveDay(ctx, model.DayRecord{Date: "2026-01-01"}))
	require.NoError(t, m.ArchiveDay(ctx, model.DayRecord{Date: "2026-01-03"}))
	require.NoError(t, m.ArchiveDay(ctx, model.DayRecord{Date: "2026-01-02"}))

	got, err := m.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2026-01-03", got[0].Date)
	assert.Equal(t, "2026-01-02", got[1].Date)
}
