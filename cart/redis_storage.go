package cart

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "tastehub:"

// RedisStorage keeps session carts in Redis; every save refreshes the TTL.
type RedisStorage struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{Client: client, TTL: ttl}
}

func (r *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := r.Client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoData
	}
	return b, err
}

func (r *RedisStorage) Save(ctx context.Context, key string, data []byte) error {
	return r.Client.Set(ctx, redisKeyPrefix+key, data, r.TTL).Err()
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	return r.Client.Del(ctx, redisKeyPrefix+key).Err()
}
