package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"luna/internal/bot"
	"luna/internal/cache"
	"luna/internal/config"
	"luna/internal/db"
	"luna/internal/game"
	httpServer "luna/internal/http"
	"luna/internal/logger"
	"luna/internal/metrics"
	"luna/internal/repository"
	"luna/internal/service"
	"luna/internal/ws"

	"github.com/gin-gonic/gin"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	ctx := context.Background()

	dbPool := db.Connect(ctx, cfg.DatabaseURL)
	defer dbPool.Close()

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("redis connection failed", "error", err)
	}

	var registry game.Registry = game.NewMemoryRegistry()
	if rdb != nil {
		defer rdb.Close()
		ttl := cache.ClaimTTL(cfg.LobbyTimeout)
		registry = cache.NewRedisRegistry(rdb, ttl)
		logger.Info("using redis lobby registry", "addr", cfg.RedisAddr, "claim_ttl", ttl)
	}

	promptRepo := repository.NewPromptRepository(dbPool)
	statsRepo := repository.NewStatisticsRepository(dbPool)

	parties := service.NewPartyService(service.PartyConfig{
		Registry:     registry,
		Prompts:      promptRepo,
		Recorder:     metrics.NewRecorder(statsRepo),
		LobbyTimeout: cfg.LobbyTimeout,
		Rules:        cfg.Rules,
	})
	prompts := service.NewPromptService(promptRepo)
	statistics := service.NewStatisticsService(statsRepo)

	var discord *bot.Bot
	if cfg.DiscordToken != "" {
		discord, err = bot.New(cfg.DiscordToken, cfg.DiscordGuildID, bot.Services{
			Parties:           parties,
			Prompts:           prompts,
			Statistics:        statistics,
			MinResponseLength: cfg.Rules.MinResponseLength,
		})
		if err != nil {
			logger.Fatal("discord bot init failed", "error", err)
		}
		if err := discord.Start(); err != nil {
			logger.Fatal("discord bot start failed", "error", err)
		}
	} else {
		logger.Warn("DISCORD_TOKEN is not set, discord bot disabled")
	}

	r := gin.New()
	r.Use(gin.Recovery())

	httpServer.RegisterRoutes(r, httpServer.Deps{
		DB:               dbPool,
		Redis:            rdb,
		Version:          version,
		Parties:          parties,
		Prompts:          prompts,
		Statistics:       statistics,
		Hub:              ws.NewHub(parties),
		AllowedOrigin:    cfg.AllowedOrigin,
		APIRateLimit:     cfg.APIRateLimit,
		APIRateWindow:    cfg.APIRateWindow,
		SubmitRateLimit:  cfg.SubmitRateLimit,
		SubmitRateWindow: cfg.SubmitRateWindow,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if discord != nil {
		discord.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	// games still running are aborted and their players released
	if err := parties.Shutdown(shutdownCtx); err != nil {
		logger.Error("party shutdown incomplete", "error", err)
	}

	logger.Info("server exited")
}
