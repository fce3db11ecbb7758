package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"maple-boss-api/internal/models"
	"maple-boss-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.SQLite {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestRegistryUpsertAndLookup(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.UpsertRegistry(ctx, []models.RegistryEntry{
		{BossName: "Lotus", Difficulty: "Normal", CrystalValue: 32},
		{BossName: "Lotus", Difficulty: "Hard", CrystalValue: 444},
	})
	require.NoError(t, err)

	v, err := st.GetCrystalValue(ctx, "Lotus", "Hard")
	require.NoError(t, err)
	assert.Equal(t, 444, v)

	_, err = st.GetCrystalValue(ctx, "Lotus", "Extreme")
	assert.ErrorIs(t, err, store.ErrNotFound)

	reg, err := st.FetchBossRegistry(ctx)
	require.NoError(t, err)
	require.Len(t, reg, 2)
	assert.Equal(t, "Normal", reg[0].Difficulty)
	assert.NotZero(t, reg[0].ID)
	assert.NotEqual(t, reg[0].ID, reg[1].ID)

	n, err := st.RegistryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRegistryUpsertKeepsID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertRegistry(ctx, []models.RegistryEntry{{BossName: "Will", Difficulty: "Hard", CrystalValue: 100}}))
	before, err := st.FetchBossRegistry(ctx)
	require.NoError(t, err)

	require.NoError(t, st.UpsertRegistry(ctx, []models.RegistryEntry{{BossName: "Will", Difficulty: "Hard", CrystalValue: 120}}))
	after, err := st.FetchBossRegistry(ctx)
	require.NoError(t, err)

	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, 120, after[0].CrystalValue)
}

func TestRegistryUpsertRejectsBlankPair(t *testing.T) {
	st := newTestStore(t)
	err := st.UpsertRegistry(context.Background(), []models.RegistryEntry{{BossName: "Will"}})
	assert.Error(t, err)
}

func TestCrystalHistoryRecordsChanges(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	for i, v := range []int{100, 100, 120, 90} {
		require.NoError(t, st.UpsertRegistry(ctx, []models.RegistryEntry{{
			BossName: "Gloom", Difficulty: "Chaos", CrystalValue: v,
			UpdatedAt: t0.Add(time.Duration(i) * 7 * 24 * time.Hour),
		}}))
	}

	hist, err := st.CrystalHistory(ctx, "Gloom", "Chaos", 0)
	require.NoError(t, err)
	require.Len(t, hist, 3, "unchanged values are not recorded")
	assert.Equal(t, 90, hist[0].CrystalValue)
	assert.Equal(t, 120, hist[1].CrystalValue)
	assert.Equal(t, 100, hist[2].CrystalValue)

	hist, err = st.CrystalHistory(ctx, "Gloom", "Chaos", 1)
	require.NoError(t, err)
	assert.Len(t, hist, 1)

	hist, err = st.CrystalHistory(ctx, "Gloom", "Hard", 5)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestCharacters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	c, err := st.UpsertCharacter(ctx, "Bishop", "LT-H:2:1")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "LT-H:2:1", c.BossConfig)

	updated, err := st.UpsertCharacter(ctx, " Bishop ", "LT-H:2:1,DM-N:3:2")
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID, "id survives updates")
	assert.Equal(t, "LT-H:2:1,DM-N:3:2", updated.BossConfig)

	_, err = st.UpsertCharacter(ctx, "Adele", "")
	require.NoError(t, err)

	list, err := st.ListCharacters(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Adele", list[0].Name)

	require.NoError(t, st.DeleteCharacter(ctx, "Adele"))
	assert.ErrorIs(t, st.DeleteCharacter(ctx, "Adele"), store.ErrNotFound)

	_, err = st.GetCharacter(ctx, "Adele")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.UpsertCharacter(ctx, "  ", "")
	assert.Error(t, err)
}
