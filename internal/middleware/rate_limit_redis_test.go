package middleware

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("set GO_TEST_INTEGRATION=1 to run Redis integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisC.Terminate(context.Background()) })

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisRateLimiterStore(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisRateLimiterStore(client, "test-"+uuid.New().String(), 2, time.Minute)

	for i := 0; i < 2; i++ {
		allowed, err := store.Allow("198.51.100.1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := store.Allow("198.51.100.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = store.Allow("198.51.100.2")
	require.NoError(t, err)
	assert.True(t, allowed)

	ttl, err := client.TTL(context.Background(), "rate_limit:"+store.prefix+":198.51.100.1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisRateLimiterStoreFailsClosed(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	store := NewRedisRateLimiterStore(client, "down", 5, time.Minute)
	allowed, err := store.Allow("203.0.113.9")
	assert.Error(t, err)
	assert.False(t, allowed)
}
