package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/aviator-overlay/backend/internal/i18n"
)

// GetTranslations returns the full message table for the requested language
func GetTranslations(c *gin.Context) {
	lang := requestLanguage(c)
	c.JSON(http.StatusOK, gin.H{
		"language": lang,
		"messages": i18n.All(lang),
	})
}
