package config

import (
	"os"
	"strconv"
	"time"

	"luna/internal/game"
	"luna/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string
	JWTSecret     string
	AllowedOrigin string

	// Discord bot is disabled when the token is empty
	DiscordToken   string
	DiscordGuildID string // commands are registered globally when empty

	// Redis is optional: without it the membership registry is in-process and
	// rate limiting is off
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LobbyTimeout time.Duration
	Rules        game.Rules

	APIRateLimit     int
	APIRateWindow    time.Duration
	SubmitRateLimit  int
	SubmitRateWindow time.Duration

	LogLevel string
	LogJSON  bool
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	defaults := game.DefaultRules()
	rules := game.Rules{
		StartingLives:      envInt("STARTING_LIVES", defaults.StartingLives),
		CategoryTimeout:    envSeconds("CATEGORY_TIMEOUT_SECONDS", defaults.CategoryTimeout),
		ResponseTimeout:    envSeconds("RESPONSE_TIMEOUT_SECONDS", defaults.ResponseTimeout),
		PassConfirmTimeout: envSeconds("PASS_CONFIRM_TIMEOUT_SECONDS", defaults.PassConfirmTimeout),
		NextPlayerTimeout:  envSeconds("NEXT_PLAYER_TIMEOUT_SECONDS", defaults.NextPlayerTimeout),
		MinResponseLength:  envInt("MIN_RESPONSE_LENGTH", defaults.MinResponseLength),
	}

	return &Config{
		AppPort:       port,
		DatabaseURL:   dbURL,
		JWTSecret:     jwtSecret,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		LobbyTimeout: envSeconds("LOBBY_TIMEOUT_SECONDS", game.DefaultLobbyTimeout),
		Rules:        rules,

		APIRateLimit:     envInt("API_RATE_LIMIT", 120),
		APIRateWindow:    envSeconds("API_RATE_WINDOW_SECONDS", time.Minute),
		SubmitRateLimit:  envInt("SUBMIT_RATE_LIMIT", 10),
		SubmitRateWindow: envSeconds("SUBMIT_RATE_WINDOW_SECONDS", 10*time.Minute),

		LogLevel: os.Getenv("LOG_LEVEL"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",
	}
}

// envInt reads a non-negative integer; anything else falls back to def.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		logger.Warn("ignoring invalid config value", "key", key, "value", v)
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
		logger.Warn("ignoring invalid config value", "key", key, "value", v)
	}
	return def
}
