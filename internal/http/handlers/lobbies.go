package handlers

import (
	"errors"
	"net/http"

	"luna/internal/service"

	"github.com/gin-gonic/gin"
)

// ListLobbies returns every running party, lobbies closing soonest first.
func (h *Handler) ListLobbies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"lobbies": h.Parties.Lobbies()})
}

func (h *Handler) GetLobby(c *gin.Context) {
	info, err := h.Parties.Info(c.Param("id"))
	if errors.Is(err, service.ErrLobbyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "lobby not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get lobby"})
		return
	}
	c.JSON(http.StatusOK, info)
}
