package repository

import (
	"context"
	"testing"
	"time"

	"bookingrisk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFormStateRepository(t *testing.T) {
	repo := NewMemoryFormStateRepository(time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetState", func(t *testing.T) {
		in := models.DefaultInput()
		in.LeadTime = 90
		state := &models.FormState{SessionID: "s123", Input: in}
		err := repo.SetState(ctx, state)
		require.NoError(t, err)

		got, err := repo.GetState(ctx, "s123")
		require.NoError(t, err)
		assert.Equal(t, state, got)
	})

	t.Run("ReturnsCopy", func(t *testing.T) {
		got, err := repo.GetState(ctx, "s123")
		require.NoError(t, err)
		got.Input.LeadTime = 1

		again, err := repo.GetState(ctx, "s123")
		require.NoError(t, err)
		assert.Equal(t, 90, again.Input.LeadTime)
	})

	t.Run("ClearState", func(t *testing.T) {
		err := repo.ClearState(ctx, "s123")
		require.NoError(t, err)
		got, _ := repo.GetState(ctx, "s123")
		assert.Nil(t, got)
	})

	t.Run("Expiry", func(t *testing.T) {
		now := time.Now()
		repo.now = func() time.Time { return now }
		defer func() { repo.now = time.Now }()

		require.NoError(t, repo.SetState(ctx, &models.FormState{SessionID: "old"}))
		now = now.Add(2 * time.Hour)

		got, err := repo.GetState(ctx, "old")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		now := time.Now()
		repo.now = func() time.Time { return now }
		defer func() { repo.now = time.Now }()

		key := "192.0.2.1"
		allowed, _ := repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.False(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, "192.0.2.2", 2, time.Second)
		assert.True(t, allowed)

		now = now.Add(time.Second + 10*time.Millisecond)
		allowed, _ = repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.True(t, allowed)
	})
}

func TestMemoryFormStateRepository_NoTTL(t *testing.T) {
	repo := NewMemoryFormStateRepository(0)
	ctx := context.Background()

	now := time.Now()
	repo.now = func() time.Time { return now }
	require.NoError(t, repo.SetState(ctx, &models.FormState{SessionID: "keep"}))
	now = now.Add(24 * 365 * time.Hour)

	got, err := repo.GetState(ctx, "keep")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
