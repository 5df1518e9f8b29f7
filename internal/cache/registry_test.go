package cache

import (
	"context"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna/internal/domain"
	"luna/internal/game"
)

// Integration-style test: runs only if REDIS_ADDR env is set.
func newTestRegistry(t *testing.T) *RedisRegistry {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	client, err := Connect(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRegistry(client, time.Minute)
}

func testUser(n int) domain.UserID {
	return domain.UserID(time.Now().UnixNano()%1_000_000_000*100 + int64(n))
}

func TestRedisRegistryClaims(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	u := testUser(1)

	ok, err := reg.TryAdd(ctx, u, "lobby-a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reg.TryAdd(ctx, u, "lobby-b")
	require.NoError(t, err)
	assert.False(t, ok)

	// another lobby cannot release the claim
	require.NoError(t, reg.Remove(ctx, "lobby-b", u))
	id, found, err := reg.LobbyOf(ctx, u)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "lobby-a", id)

	require.NoError(t, reg.Remove(ctx, "lobby-a", u))
	in, err := reg.Contains(ctx, u)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestRedisRegistryBacksLobby(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	leader, member := testUser(2), testUser(3)

	l, err := game.NewLobby(ctx, game.LobbyConfig{Leader: leader, Timeout: 50 * time.Millisecond, Registry: reg})
	require.NoError(t, err)
	require.NoError(t, l.Join(ctx, member))

	res, err := l.Await(ctx)
	require.NoError(t, err)
	assert.True(t, res.Started())

	for _, u := range []domain.UserID{leader, member} {
		in, err := reg.Contains(ctx, u)
		require.NoError(t, err)
		assert.False(t, in)
	}
}

func TestRedisRegistryConcurrentClaims(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	u := testUser(4)
	t.Cleanup(func() {
		for i := range 20 {
			_ = reg.Remove(ctx, "lobby-"+strconv.Itoa(i), u)
		}
	})

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := reg.TryAdd(ctx, u, "lobby-"+strconv.Itoa(i))
			if err == nil && ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestClaimTTLOutlivesLobbyWait(t *testing.T) {
	assert.Equal(t, DefaultClaimTTL, ClaimTTL(30*time.Second))
	assert.Equal(t, 30*time.Minute, ClaimTTL(15*time.Minute))
	assert.Greater(t, ClaimTTL(900*time.Second), 900*time.Second)
}

func TestRedisRegistryClaimExpiry(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	u := testUser(3)

	ok, err := reg.TryAdd(ctx, u, "lobby-ttl")
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() { _ = reg.Remove(context.Background(), "lobby-ttl", u) })

	ttl, err := reg.client.TTL(ctx, memberKey(u)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
	assert.LessOrEqual(t, ttl, time.Minute)
}
