package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockRepository_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	repo := NewLockRepository()

	token, ok, err := repo.Acquire(ctx, "lock:import:a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = repo.Acquire(ctx, "lock:import:a", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Release(ctx, "lock:import:a", "foreign"))
	_, ok, _ = repo.Acquire(ctx, "lock:import:a", time.Minute)
	assert.False(t, ok, "foreign token must not release the lock")

	require.NoError(t, repo.Release(ctx, "lock:import:a", token))
	_, ok, _ = repo.Acquire(ctx, "lock:import:a", time.Minute)
	assert.True(t, ok)
}

func TestLockRepository_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &lockRepository{locks: make(map[string]lockEntry), now: func() time.Time { return now }}

	_, ok, _ := repo.Acquire(ctx, "k", time.Second)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = repo.Acquire(ctx, "k", time.Second)
	assert.True(t, ok)
}

func TestGroupRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewGroupRepository()

	first, err := repo.GetOrCreate(ctx, 1, "g1")
	require.NoError(t, err)
	second, err := repo.GetOrCreate(ctx, 1, "g1")
	require.NoError(t, err)
	other, err := repo.GetOrCreate(ctx, 2, "g1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, first.ID, other.ID)
}
