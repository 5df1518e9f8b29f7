package handlers

import (
	"luna/internal/domain"
	"luna/internal/http/middleware"
	"luna/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Parties    *service.PartyService
	Prompts    *service.PromptService
	Statistics *service.StatisticsService
}

func NewHandler(parties *service.PartyService, prompts *service.PromptService, statistics *service.StatisticsService) *Handler {
	return &Handler{Parties: parties, Prompts: prompts, Statistics: statistics}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (domain.UserID, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(domain.UserID)
	return id, ok
}
