package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestInMemoryBlacklist(t *testing.T) {
	store := NewInMemoryBlacklistStoreWithInterval(0)

	isBlacklisted, err := store.IsBlacklisted("unknown")
	assert.NoError(t, err)
	assert.False(t, isBlacklisted)

	exp1 := time.Now().Add(time.Hour)
	require.NoError(t, store.AddToBlacklist("tok", exp1))
	isBlacklisted, err = store.IsBlacklisted("tok")
	assert.NoError(t, err)
	assert.True(t, isBlacklisted)

	// re-adding moves the expiry
	exp2 := exp1.Add(time.Hour)
	require.NoError(t, store.AddToBlacklist("tok", exp2))
	store.mu.RLock()
	assert.Equal(t, exp2, store.blacklist["tok"])
	store.mu.RUnlock()
}

func TestCleanUpExpired(t *testing.T) {
	store := NewInMemoryBlacklistStoreWithInterval(0)

	assert.NotPanics(t, store.CleanUpExpired)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.AddToBlacklist(fmt.Sprintf("expired-%d", i), past))
	}
	require.NoError(t, store.AddToBlacklist("valid", future))

	store.CleanUpExpired()

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.Len(t, store.blacklist, 1)
	assert.Contains(t, store.blacklist, "valid")
}

func TestPeriodicCleanUp(t *testing.T) {
	store := NewInMemoryBlacklistStoreWithInterval(10 * time.Millisecond)
	require.NoError(t, store.AddToBlacklist("short", time.Now().Add(5*time.Millisecond)))

	assert.Eventually(t, func() bool {
		store.mu.RLock()
		defer store.mu.RUnlock()
		return len(store.blacklist) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestInMemoryBlacklistConcurrentAccess(t *testing.T) {
	store := NewInMemoryBlacklistStoreWithInterval(0)
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			assert.NoError(t, store.AddToBlacklist(fmt.Sprintf("token-%d", id), exp))
		}(i)
		go func(id int) {
			defer wg.Done()
			_, err := store.IsBlacklisted(fmt.Sprintf("token-%d", id))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.Len(t, store.blacklist, 20)
}

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisBlacklist(t *testing.T) {
	client := startRedis(t)
	store := NewRedisBlacklistStore(client)

	isBlacklisted, err := store.IsBlacklisted("token-a")
	require.NoError(t, err)
	assert.False(t, isBlacklisted)

	require.NoError(t, store.AddToBlacklist("token-a", time.Now().Add(time.Minute)))
	isBlacklisted, err = store.IsBlacklisted("token-a")
	require.NoError(t, err)
	assert.True(t, isBlacklisted)

	ttl, err := client.TTL(context.Background(), store.key("token-a")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	// expired tokens are not worth storing
	require.NoError(t, store.AddToBlacklist("token-b", time.Now().Add(-time.Minute)))
	isBlacklisted, err = store.IsBlacklisted("token-b")
	require.NoError(t, err)
	assert.False(t, isBlacklisted)
}

func TestRedisBlacklistUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer func() { _ = client.Close() }()
	store := NewRedisBlacklistStore(client)

	_, err := store.IsBlacklisted("token")
	assert.Error(t, err)
}
