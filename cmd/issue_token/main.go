package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"luna/internal/domain"
	"luna/internal/logger"
	"luna/internal/service"

	"github.com/joho/godotenv"
)

// Prints a signed token for a user id, for WebSocket and API clients.
func main() {
	user := flag.String("user", "", "user id (Discord snowflake)")
	ttl := flag.Duration("ttl", service.DefaultTokenTTL, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(secret)

	id, err := domain.ParseUserID(*user)
	if err != nil {
		logger.Fatal("invalid -user", "error", err)
	}

	token, err := service.GenerateJWT(id, *ttl)
	if err != nil {
		logger.Fatal("generate token", "error", err)
	}
	fmt.Println(token)
	logger.Debug("token issued", "user_id", id, "expires_at", time.Now().Add(*ttl))
}
