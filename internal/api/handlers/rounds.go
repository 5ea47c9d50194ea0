package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/aviator-overlay/backend/internal/services"
)

type RoundHandler struct {
	rounds *services.RoundLogService
}

func NewRoundHandler(rounds *services.RoundLogService) *RoundHandler {
	return &RoundHandler{
		rounds: rounds,
	}
}

// GetRounds lists persisted rounds, newest first
func (h *RoundHandler) GetRounds(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	rounds, err := h.rounds.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rounds": rounds,
		"count":  len(rounds),
		"limit":  services.ClampRoundLimit(limit),
	})
}
