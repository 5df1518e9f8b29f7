package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"luna/internal/domain"
	"luna/internal/logger"
	"luna/internal/service"

	"github.com/gin-gonic/gin"
)

// Profile returns the statistics profile of any user.
func (h *Handler) Profile(c *gin.Context) {
	id, err := domain.ParseUserID(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	h.writeProfile(c, id)
}

func (h *Handler) MyStatistics(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	h.writeProfile(c, userID)
}

func (h *Handler) writeProfile(c *gin.Context, user domain.UserID) {
	profile, err := h.Statistics.Profile(c.Request.Context(), user)
	if errors.Is(err, service.ErrNoStatistics) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no statistics for this user"})
		return
	}
	if err != nil {
		logger.Error("load profile failed", "user_id", user, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get statistics"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetLeaderboard returns the top winners, 10 by default and at most 100.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	top, err := h.Statistics.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		logger.Error("load leaderboard failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": top})
}
