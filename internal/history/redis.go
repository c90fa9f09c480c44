package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"edumate/internal/models"
	"edumate/internal/redis"
)

const redisKeyPrefix = "edumate:history:"

// RedisRepository stores each transcript as a redis list of JSON encoded messages.
// Every append refreshes the key ttl so idle sessions expire on their own.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (r *RedisRepository) Get(ctx context.Context, sessionID string) ([]models.Message, error) {
	raw, err := r.client.LRange(ctx, redisKey(sessionID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	msgs := make([]models.Message, 0, len(raw))
	for _, item := range raw {
		var msg models.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (r *RedisRepository) Append(ctx context.Context, sessionID string, msgs ...models.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(msgs))
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("encode history entry: %w", err)
		}
		values = append(values, data)
	}
	if _, err := r.client.RPushExpire(ctx, redisKey(sessionID), r.ttl, values...); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (r *RedisRepository) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, redisKey(sessionID)); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (r *RedisRepository) Len(ctx context.Context, sessionID string) (int, error) {
	n, err := r.client.LLen(ctx, redisKey(sessionID))
	if err != nil {
		return 0, fmt.Errorf("history length: %w", err)
	}
	return int(n), nil
}
