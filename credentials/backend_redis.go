package credentials

import (
	"context"
	"fmt"

	"github.com/jrsteele09/mitti-dashboard/internal/errors"
	"github.com/redis/go-redis/v9"
)

var _ Backend = (*RedisBackend)(nil)

// RedisBackend keeps the slot in a single redis key with no TTL.
type RedisBackend struct {
	client redis.UniversalClient
	key    string
}

func NewRedisBackend(client redis.UniversalClient, key string) *RedisBackend {
	if key == "" {
		key = "mitti:dashboard:" + SlotName
	}
	return &RedisBackend{client: client, key: key}
}

func (b *RedisBackend) Save(ctx context.Context, credential string) error {
	if err := b.client.Set(ctx, b.key, credential, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", b.key, err)
	}
	return nil
}

func (b *RedisBackend) Load(ctx context.Context) (string, error) {
	credential, err := b.client.Get(ctx, b.key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && credential == "") {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", b.key, err)
	}
	return credential, nil
}

func (b *RedisBackend) Clear(ctx context.Context) error {
	if err := b.client.Del(ctx, b.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", b.key, err)
	}
	return nil
}
