package http

import (
	"time"

	"luna/internal/http/handlers"
	"luna/internal/http/middleware"
	"luna/internal/service"
	"luna/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// Deps is everything the routes are served from. DB and Redis may be nil in tests.
type Deps struct {
	DB         *pgxpool.Pool
	Redis      *redis.Client
	Version    string
	Parties    *service.PartyService
	Prompts    *service.PromptService
	Statistics *service.StatisticsService
	Hub        *ws.Hub

	AllowedOrigin    string
	APIRateLimit     int
	APIRateWindow    time.Duration
	SubmitRateLimit  int
	SubmitRateWindow time.Duration
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := handlers.NewHandler(d.Parties, d.Prompts, d.Statistics)
	healthHandler := handlers.NewHealthHandler(d.DB, d.Redis, d.Version)
	limiter := middleware.NewRateLimiter(d.Redis)

	r.Use(middleware.Metrics(), middleware.CORS(d.AllowedOrigin))

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(limiter.ByIP(d.APIRateLimit, d.APIRateWindow))

	api.GET("/statistics/:user_id", h.Profile)
	api.GET("/me/statistics", middleware.JWT(), h.MyStatistics)
	api.GET("/leaderboard", h.GetLeaderboard)

	api.GET("/lobbies", h.ListLobbies)
	api.GET("/lobbies/:id", h.GetLobby)

	api.GET("/prompts/stats", h.GetPromptPool)
	submitRL := limiter.ByUser("submit", d.SubmitRateLimit, d.SubmitRateWindow)
	api.POST("/prompts", middleware.JWT(), submitRL, h.SubmitPrompt)
	api.POST("/prompts/bulk", middleware.JWT(), submitRL, h.SubmitBulk)

	// WebSocket frontend
	if d.Hub != nil {
		r.GET("/ws", ws.HandleWS(d.Hub, d.AllowedOrigin))
	}
}
