package storage

import (
	"context"
	"path/filepath"
	"testing"

	"exile-bot/internal/config"
	"exile-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepository(t *testing.T) *SanctionRepository {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "exile.sqlite")
	cfg.Logger.Level = "ERROR"

	db, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	repo := NewSanctionRepository(db)
	require.NoError(t, repo.MigrateTable())
	return repo
}

func TestSanctionRepositoryUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	repo := testRepository(t)

	require.NoError(t, repo.Upsert(ctx, &models.SanctionRecord{ID: "u1", OldNickname: "Alice", Reason: "first"}))
	require.NoError(t, repo.Upsert(ctx, &models.SanctionRecord{ID: "u1", OldNickname: "Alice2", Reason: "second"}))

	rec, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Alice2", rec.OldNickname)
	assert.Equal(t, "second", rec.Reason)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSanctionRepositoryGetMissing(t *testing.T) {
	repo := testRepository(t)

	rec, err := repo.Get(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSanctionRepositoryDeleteAndList(t *testing.T) {
	ctx := context.Background()
	repo := testRepository(t)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Upsert(ctx, &models.SanctionRecord{ID: id, OldNickname: "n-" + id}))
	}

	require.NoError(t, repo.Delete(ctx, "b"))
	require.NoError(t, repo.Delete(ctx, "missing"))

	records, err := repo.List(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"a", "c"}, ids)
}

func TestSanctionRepositoryReset(t *testing.T) {
	ctx := context.Background()
	repo := testRepository(t)

	require.NoError(t, repo.Upsert(ctx, &models.SanctionRecord{ID: "a"}))
	require.NoError(t, repo.Reset())

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "oracle"
	_, err := Open(cfg)
	assert.Error(t, err)
}
