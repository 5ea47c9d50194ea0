package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/codyseavey/aviator-overlay/backend/internal/i18n"
)

// requestLanguage picks the response language from ?lang= or the Accept-Language header
func requestLanguage(c *gin.Context) i18n.Language {
	if lang := c.Query("lang"); lang != "" {
		return i18n.Parse(lang)
	}
	return i18n.Parse(c.GetHeader("Accept-Language"))
}
