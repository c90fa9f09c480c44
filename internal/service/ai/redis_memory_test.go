package ai

import (
	"context"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	"edumate/internal/config"
	"edumate/internal/redis"
)

func TestRedisMemoryLifecycle(t *testing.T) {
	mem, client := newRedisMemory(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, mem.Save(ctx, "s1", "Apa itu {x}?", "<p>variabel</p>"))
	require.NoError(t, mem.Save(ctx, "s2", "lain", "sesi"))

	got, err := mem.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, schema.User, got[0].Role)
	require.Equal(t, "Apa itu {x}?", got[0].Content)
	require.Equal(t, schema.Assistant, got[1].Role)
	require.Equal(t, "<p>variabel</p>", got[1].Content)

	ttl, err := client.TTL(ctx, memoryKey("s1"))
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	require.NoError(t, mem.Clear(ctx, "s1"))
	got, err = mem.Load(ctx, "s1")
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = mem.Load(ctx, "s2")
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestRedisMemoryExpiresWithTTL(t *testing.T) {
	mem, _ := newRedisMemory(t, time.Second)
	ctx := context.Background()

	require.NoError(t, mem.Save(ctx, "s1", "q", "a"))
	require.Eventually(t, func() bool {
		got, err := mem.Load(ctx, "s1")
		return err == nil && len(got) == 0
	}, 5*time.Second, 100*time.Millisecond)
}

func newRedisMemory(t *testing.T, ttl time.Duration) (*RedisMemory, *redis.Client) {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis-backed memory tests")
	}
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	client, err := redis.NewRedisClient(&config.Config{Redis: config.RedisConfig{Host: host, Port: port}})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Raw().FlushDB(ctx).Err())
	return NewRedisMemory(client, ttl), client
}
