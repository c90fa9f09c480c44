package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	"edumate/internal/redis"
)

const memoryKeyPrefix = "edumate:memory:"

type memoryEntry struct {
	Role    schema.RoleType `json:"role"`
	Content string          `json:"content"`
}

// RedisMemory keeps model memory next to the redis transcript, sharing its ttl
// so both expire together and every instance sees the same turns.
type RedisMemory struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMemory(client *redis.Client, ttl time.Duration) *RedisMemory {
	return &RedisMemory{client: client, ttl: ttl}
}

func memoryKey(sessionID string) string {
	return memoryKeyPrefix + sessionID
}

func (m *RedisMemory) Load(ctx context.Context, sessionID string) ([]*schema.Message, error) {
	raw, err := m.client.LRange(ctx, memoryKey(sessionID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("load model memory: %w", err)
	}
	msgs := make([]*schema.Message, 0, len(raw))
	for _, item := range raw {
		var entry memoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("decode model memory entry: %w", err)
		}
		switch entry.Role {
		case schema.User:
			msgs = append(msgs, schema.UserMessage(entry.Content))
		case schema.Assistant:
			msgs = append(msgs, schema.AssistantMessage(entry.Content, nil))
		}
	}
	return msgs, nil
}

func (m *RedisMemory) Save(ctx context.Context, sessionID, question, answer string) error {
	values := make([]interface{}, 0, 2)
	for _, entry := range []memoryEntry{
		{Role: schema.User, Content: question},
		{Role: schema.Assistant, Content: answer},
	} {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode model memory entry: %w", err)
		}
		values = append(values, data)
	}
	if _, err := m.client.RPushExpire(ctx, memoryKey(sessionID), m.ttl, values...); err != nil {
		return fmt.Errorf("save model memory: %w", err)
	}
	return nil
}

func (m *RedisMemory) Clear(ctx context.Context, sessionID string) error {
	if err := m.client.Del(ctx, memoryKey(sessionID)); err != nil {
		return fmt.Errorf("clear model memory: %w", err)
	}
	return nil
}
