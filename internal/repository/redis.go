package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookingrisk/internal/config"
	"bookingrisk/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	formStatePrefix = "form_state:"
	rateLimitPrefix = "rate_limit:"
)

// RedisFormStateRepository keeps per-session form values in Redis so the
// form survives restarts and is shared between replicas.
type RedisFormStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:       cfg.Address,
		Password:   cfg.Password,
		DB:         cfg.DB,
		PoolSize:   cfg.PoolSize,
		MaxRetries: cfg.MaxRetries,
	}

	return redis.NewClient(options)
}

func NewRedisFormStateRepository(client *redis.Client, ttl time.Duration) *RedisFormStateRepository {
	return &RedisFormStateRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisFormStateRepository) GetState(ctx context.Context, sessionID string) (*models.FormState, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, formStatePrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get form state from redis: %w", err)
	}

	var state models.FormState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form state: %w", err)
	}

	return &state, nil
}

func (r *RedisFormStateRepository) SetState(ctx context.Context, state *models.FormState) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal form state: %w", err)
	}

	if err := r.client.Set(ctx, formStatePrefix+state.SessionID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set form state in redis: %w", err)
	}

	return nil
}

func (r *RedisFormStateRepository) ClearState(ctx context.Context, sessionID string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, formStatePrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete form state from redis: %w", err)
	}
	return nil
}

// CheckRateLimit counts calls for key in a fixed window starting at the first call.
func (r *RedisFormStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	redisKey := rateLimitPrefix + key
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= int64(limit), nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
