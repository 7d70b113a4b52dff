package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/content-services/modulemd-backend/pkg/api"
	"github.com/content-services/modulemd-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

type redisCache struct {
	client *redis.Client
}

func NewRedisCache() *redisCache {
	c := config.Get()
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisUrl(),
		Username: c.Clients.Redis.Username,
		Password: c.Clients.Redis.Password,
		DB:       c.Clients.Redis.DB,
	})
	return NewRedisCacheWithClient(client)
}

func NewRedisCacheWithClient(client *redis.Client) *redisCache {
	return &redisCache{
		client: client,
	}
}

// GetValidation reads a validation result stored under key
func (c *redisCache) GetValidation(ctx context.Context, key string) (*api.ValidationResponse, error) {
	buf, err := c.get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	var response api.ValidationResponse
	err = json.Unmarshal(buf, &response)
	if err != nil {
		return nil, fmt.Errorf("redis unmarshal error: %w", err)
	}
	return &response, nil
}

// SetValidation stores a validation result under key for the configured expiration
func (c *redisCache) SetValidation(ctx context.Context, key string, response api.ValidationResponse) error {
	buf, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("unable to marshal for Redis cache: %w", err)
	}

	err = c.client.Set(ctx, key, string(buf), config.Get().Clients.Redis.Expiration).Err()
	if err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

func (c *redisCache) get(ctx context.Context, key string) ([]byte, error) {
	cmd := c.client.Get(ctx, key)
	if errors.Is(cmd.Err(), redis.Nil) {
		return nil, ErrNotFound
	} else if cmd.Err() != nil {
		return nil, fmt.Errorf("redis error: %w", cmd.Err())
	}

	buf, err := cmd.Bytes()
	if err != nil {
		return nil, fmt.Errorf("redis bytes conversion error: %w", err)
	}
	return buf, err
}
