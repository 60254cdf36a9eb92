package storage

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "salesclient:"

// RedisStore keeps values as plain Redis strings under a key prefix, so several
// clients can share one Redis without clashing.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(addr, prefix string) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis store: address is empty")
	}
	return NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: addr}), prefix), nil
}

func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "redis store: get %s", key)
	}
	return v, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	return errors.Wrapf(r.client.Set(ctx, r.prefix+key, value, 0).Err(), "redis store: set %s", key)
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(r.client.Del(ctx, r.prefix+key).Err(), "redis store: delete %s", key)
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
