package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps each session in one hash. Every write refreshes the
// hash's TTL when one is set.
type RedisBackend struct {
	Client *redis.Client
	TTL    time.Duration
}

func redisKey(sid string) string {
	return "session:" + sid
}

func (b *RedisBackend) GetAll(ctx context.Context, sid string) (map[string]string, error) {
	v, err := b.Client.HGetAll(ctx, redisKey(sid)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return v, nil
}

func (b *RedisBackend) Put(ctx context.Context, sid string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	fields := make(map[string]any, len(values))
	for k, v := range values {
		fields[k] = v
	}
	key := redisKey(sid)
	_, err := b.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, fields)
		if b.TTL > 0 {
			p.Expire(ctx, key, b.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, sid string) error {
	if err := b.Client.Del(ctx, redisKey(sid)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
