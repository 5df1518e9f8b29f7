package cache

import (
	"context"
	"fmt"
	"time"

	"luna/internal/domain"
	"luna/internal/game"

	redis "github.com/redis/go-redis/v9"
)

const (
	memberKeyPrefix = "luna:lobby_member:"

	// DefaultClaimTTL bounds how long a claim survives a crashed process.
	DefaultClaimTTL = 10 * time.Minute
)

// ClaimTTL is the claim lifetime for lobbies waiting up to lobbyTimeout. A claim
// has to outlive the whole wait, or the user could join a second lobby meanwhile.
func ClaimTTL(lobbyTimeout time.Duration) time.Duration {
	return max(DefaultClaimTTL, 2*lobbyTimeout)
}

// releaseScript deletes each key only while it still holds this lobby's id.
var releaseScript = redis.NewScript(`
local n = 0
for i, key in ipairs(KEYS) do
	if redis.call("GET", key) == ARGV[1] then
		n = n + redis.call("DEL", key)
	end
end
return n
`)

// RedisRegistry is a game.Registry shared by every process using the same Redis.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

var _ game.Registry = (*RedisRegistry)(nil)

func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = DefaultClaimTTL
	}
	return &RedisRegistry{client: client, ttl: ttl}
}

func memberKey(user domain.UserID) string {
	return memberKeyPrefix + user.String()
}

func (r *RedisRegistry) TryAdd(ctx context.Context, user domain.UserID, lobbyID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, memberKey(user), lobbyID, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", user, err)
	}
	return ok, nil
}

func (r *RedisRegistry) Remove(ctx context.Context, lobbyID string, users ...domain.UserID) error {
	if len(users) == 0 {
		return nil
	}
	keys := make([]string, 0, len(users))
	for _, u := range users {
		keys = append(keys, memberKey(u))
	}
	if err := releaseScript.Run(ctx, r.client, keys, lobbyID).Err(); err != nil {
		return fmt.Errorf("release lobby %s: %w", lobbyID, err)
	}
	return nil
}

func (r *RedisRegistry) Contains(ctx context.Context, user domain.UserID) (bool, error) {
	n, err := r.client.Exists(ctx, memberKey(user)).Result()
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", user, err)
	}
	return n > 0, nil
}

// LobbyOf returns the lobby holding user's claim.
func (r *RedisRegistry) LobbyOf(ctx context.Context, user domain.UserID) (string, bool, error) {
	id, err := r.client.Get(ctx, memberKey(user)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup %s: %w", user, err)
	}
	return id, true, nil
}
