package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoragePercentage(t *testing.T) {
	tests := []struct {
		used, quota int64
		want        int
	}{
		{0, 1000, 0},
		{600, 1000, 60},
		{5, 1000, 1},
		{4, 1000, 0},
		{1000, 1000, 100},
		{5000, 1000, 100},
		{10, 0, 0},
		{-1, 1000, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StoragePercentage(tt.used, tt.quota), "used=%d quota=%d", tt.used, tt.quota)
	}
}

func TestStats_Compute(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.admin.UpdateSettings(ctx, admin, SettingsInput{QuotaBytes: 1000, TrashRetentionDays: 7})
	require.NoError(t, err)

	e.create(t, owner, "Small", "small.txt", 100)
	mid := e.create(t, owner, "Medium", "medium.txt", 200)
	e.create(t, owner, "Large", "large.txt", 300)
	trashed := e.create(t, owner, "Trash", "trash.txt", 400)
	e.trash(t, owner, trashed.ID)
	_, err = e.perms.Grant(ctx, owner, mid.ID, grantee.ID, models.AccessView)
	require.NoError(t, err)

	st, err := e.stats.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, &models.Stats{
		TotalFiles:        3,
		StorageUsedBytes:  600,
		QuotaBytes:        1000,
		StoragePercentage: 60,
		SharedFiles:       1,
		RecentUploads:     3,
	}, st)
}

func TestStats_ClampedWhenOverQuota(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.create(t, owner, "Big", "big.iso", 900)

	_, err := e.admin.UpdateSettings(ctx, admin, SettingsInput{QuotaBytes: 100, TrashRetentionDays: 7})
	require.NoError(t, err)

	st, err := e.stats.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 100, st.StoragePercentage)
}

func TestStats_WritesInvalidateCache(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d := e.create(t, owner, "First", "first.txt", 10)

	st, err := e.stats.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.TotalFiles)

	e.create(t, owner, "Second", "second.txt", 10)
	st, err = e.stats.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.TotalFiles)

	_, err = e.perms.Grant(ctx, owner, d.ID, grantee.ID, models.AccessView)
	require.NoError(t, err)
	st, err = e.stats.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.SharedFiles)

	e.trash(t, owner, d.ID)
	st, err = e.stats.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.TotalFiles)
	assert.Equal(t, int64(0), st.SharedFiles)
}

func TestStats_RequiresActor(t *testing.T) {
	e := newEnv(t)
	_, err := e.stats.Get(context.Background(), models.Actor{})
	requireKind(t, err, common.ErrUnauthorized)
}
