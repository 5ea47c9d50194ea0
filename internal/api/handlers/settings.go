package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/aviator-overlay/backend/internal/models"
	"github.com/codyseavey/aviator-overlay/backend/internal/services"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
	}
}

// GetCaptureArea returns the saved capture area or the default
func (h *SettingsHandler) GetCaptureArea(c *gin.Context) {
	area, isDefault, err := h.settings.GetCaptureArea()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.CaptureAreaResponse{Area: area, IsDefault: isDefault})
}

// SaveCaptureArea stores a new capture area
func (h *SettingsHandler) SaveCaptureArea(c *gin.Context) {
	var area models.CaptureArea
	if err := c.ShouldBindJSON(&area); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.settings.SaveCaptureArea(area); err != nil {
		if errors.Is(err, services.ErrInvalidCaptureArea) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.CaptureAreaResponse{Area: area, IsDefault: false})
}

// ResetCaptureArea restores the default capture area
func (h *SettingsHandler) ResetCaptureArea(c *gin.Context) {
	if err := h.settings.ResetCaptureArea(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.CaptureAreaResponse{Area: models.DefaultCaptureArea(), IsDefault: true})
}
