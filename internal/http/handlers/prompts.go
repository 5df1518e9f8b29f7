package handlers

import (
	"errors"
	"net/http"

	"luna/internal/domain"
	"luna/internal/logger"
	"luna/internal/service"

	"github.com/gin-gonic/gin"
)

type SubmitPromptRequest struct {
	Category    string         `json:"category" binding:"required"`
	Content     string         `json:"content" binding:"required"`
	AddressedTo *domain.UserID `json:"addressed_to,omitempty"`
}

type SubmitBulkRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *Handler) SubmitPrompt(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SubmitPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidCategory.Error()})
		return
	}

	p, err := h.Prompts.Submit(c.Request.Context(), userID, category, req.Content, req.AddressedTo)
	if err != nil {
		writeSubmitError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) SubmitBulk(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SubmitBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	res, err := h.Prompts.SubmitBulk(c.Request.Context(), userID, req.Text)
	if err != nil {
		var stored []*domain.Prompt
		if res != nil {
			stored = res.Stored
		}
		writeSubmitError(c, err, stored)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GetPromptPool reports how many prompts games can draw from. An empty category
// ends every game that asks for it.
func (h *Handler) GetPromptPool(c *gin.Context) {
	pool, err := h.Prompts.Pool(c.Request.Context())
	if err != nil {
		logger.Error("count prompts failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count prompts"})
		return
	}
	c.JSON(http.StatusOK, pool)
}

// writeSubmitError maps submission errors to statuses. For bulk submissions the
// prompts stored before the failure are echoed back.
func writeSubmitError(c *gin.Context, err error, stored []*domain.Prompt) {
	body := gin.H{"error": err.Error()}
	if len(stored) > 0 {
		body["stored"] = stored
	}

	var dup *service.DuplicatePromptError
	var format *service.FormatError
	switch {
	case errors.As(err, &dup):
		body["original"] = dup.Original
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, service.ErrDuplicatePrompt):
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &format):
		body["line"] = format.Line
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, service.ErrPromptTooShort),
		errors.Is(err, service.ErrEmptySubmission),
		errors.Is(err, service.ErrInvalidCategory):
		c.JSON(http.StatusUnprocessableEntity, body)
	default:
		logger.Error("submit prompt failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit prompt"})
	}
}
