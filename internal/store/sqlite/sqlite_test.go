package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulzo/provider-relay/internal/store"
	"github.com/nulzo/provider-relay/internal/store/model"
)

func newTestRepo(t *testing.T) *SqliteRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc", filepath.Join(t.TempDir(), "relay.db"))
	repo, err := NewSQLiteStorage(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo.(*SqliteRepository)
}

func record(hook string, at time.Time, routed, removed []string) *model.ApplyRecord {
	rec := &model.ApplyRecord{
		ID:         uuid.NewString(),
		GatewayURL: "http://gw.test",
		Hook:       hook,
		CreatedAt:  at,
	}
	rec.SetLists(routed, removed, nil)
	return rec
}

func TestApplyLog_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := record("settings", time.Now().UTC(), []string{"openai", "google"}, []string{"ollama"})
	rec.NoticesJSON = `["Provider \"ollama\" will use its original configuration after the next full reload."]`
	require.NoError(t, repo.Applies().Log(ctx, rec))

	got, err := repo.Applies().Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, "http://gw.test", got[0].GatewayURL)
	assert.Equal(t, "settings", got[0].Hook)
	assert.Equal(t, []string{"openai", "google"}, got[0].Routed())
	assert.Equal(t, []string{"ollama"}, got[0].Removed())
	assert.Equal(t, 2, got[0].RoutedCount)
	assert.Equal(t, 1, got[0].RemovedCount)
}

func TestApplyLog_RecentOrderAndLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		rec := record("before-run", base.Add(time.Duration(i)*time.Second), []string{"openai"}, nil)
		require.NoError(t, repo.Applies().Log(ctx, rec))
	}

	got, err := repo.Applies().Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))
	assert.True(t, got[1].CreatedAt.After(got[2].CreatedAt))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(txRepo store.Repository) error {
		rec := record("load", time.Now().UTC(), []string{"openai"}, nil)
		if err := txRepo.Applies().Log(ctx, rec); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.Applies().Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got, "rolled-back insert is not visible")
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.WithTx(ctx, func(txRepo store.Repository) error {
		return txRepo.Applies().Log(ctx, record("load", time.Now().UTC(), []string{"openai"}, nil))
	})
	require.NoError(t, err)

	got, err := repo.Applies().Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
