package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/luna")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOBBY_TIMEOUT_SECONDS", "")
	t.Setenv("STARTING_LIVES", "")
	t.Setenv("RESPONSE_TIMEOUT_SECONDS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 30*time.Second, cfg.LobbyTimeout)
	assert.Equal(t, 3, cfg.Rules.StartingLives)
	assert.Equal(t, 22*time.Second, cfg.Rules.CategoryTimeout)
	assert.Equal(t, 46*time.Second, cfg.Rules.ResponseTimeout)
	assert.Equal(t, 10*time.Second, cfg.Rules.PassConfirmTimeout)
	assert.Equal(t, 22*time.Second, cfg.Rules.NextPlayerTimeout)
	assert.Equal(t, 10, cfg.Rules.MinResponseLength)
	assert.Empty(t, cfg.DiscordToken)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/luna")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LOBBY_TIMEOUT_SECONDS", "60")
	t.Setenv("STARTING_LIVES", "5")
	t.Setenv("RESPONSE_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LOG_JSON", "true")

	cfg := Load()

	assert.Equal(t, time.Minute, cfg.LobbyTimeout)
	assert.Equal(t, 5, cfg.Rules.StartingLives)
	assert.Equal(t, 46*time.Second, cfg.Rules.ResponseTimeout)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.True(t, cfg.LogJSON)
}
