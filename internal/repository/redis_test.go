package repository

import (
	"context"
	"testing"
	"time"

	"bookingrisk/internal/config"
	"bookingrisk/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisFormStateRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
	defer client.Close()

	repo := NewRedisFormStateRepository(client, time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetState", func(t *testing.T) {
		in := models.DefaultInput()
		in.DepositType = "Non Refund"
		in.ADR = 87.5
		state := &models.FormState{
			SessionID: "sess-123",
			Input:     in,
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}

		err := repo.SetState(ctx, state)
		require.NoError(t, err)
		assert.True(t, s.Exists("form_state:sess-123"))
		assert.Equal(t, time.Hour, s.TTL("form_state:sess-123"))

		got, err := repo.GetState(ctx, "sess-123")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, state.SessionID, got.SessionID)
		assert.Equal(t, state.Input, got.Input)
		assert.True(t, state.UpdatedAt.Equal(got.UpdatedAt))
	})

	t.Run("GetNonExistentState", func(t *testing.T) {
		got, err := repo.GetState(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("CorruptState", func(t *testing.T) {
		require.NoError(t, s.Set("form_state:broken", "{not json"))
		_, err := repo.GetState(ctx, "broken")
		assert.Error(t, err)
	})

	t.Run("Expiry", func(t *testing.T) {
		require.NoError(t, repo.SetState(ctx, &models.FormState{SessionID: "short"}))
		s.FastForward(time.Hour + time.Second)

		got, err := repo.GetState(ctx, "short")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearState", func(t *testing.T) {
		state := &models.FormState{SessionID: "sess-456"}
		require.NoError(t, repo.SetState(ctx, state))

		err := repo.ClearState(ctx, "sess-456")
		require.NoError(t, err)

		got, _ := repo.GetState(ctx, "sess-456")
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		key := "203.0.113.9"
		limit := 2
		window := time.Second

		allowed, err := repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(window + time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("ServerDown", func(t *testing.T) {
		s.SetError("ERR server unavailable")
		defer s.SetError("")

		_, err := repo.GetState(ctx, "sess-123")
		assert.Error(t, err)
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisFormStateRepository(nil, time.Hour)
		_, err := repo.GetState(ctx, "sess-123")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
		assert.Error(t, Ping(ctx, nil))
	})

	t.Run("Ping", func(t *testing.T) {
		err := Ping(ctx, client)
		assert.NoError(t, err)
	})
}

func TestClose(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})

	assert.NoError(t, Close(client))
	assert.NoError(t, Close(nil))
}
