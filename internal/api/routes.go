package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/aviator-overlay/backend/internal/api/handlers"
	"github.com/codyseavey/aviator-overlay/backend/internal/services"
)

// RouterConfig holds the HTTP-facing settings
type RouterConfig struct {
	CORSOrigins      []string
	FrontendDistPath string
}

// Services are the components exposed over HTTP
type Services struct {
	Session  *services.Session
	OCR      *services.OCRWorker
	Settings *services.SettingsService
	Rounds   *services.RoundLogService
}

func SetupRouter(cfg RouterConfig, svc Services) *gin.Engine {
	router := gin.Default()
	router.Use(metricsMiddleware())

	frontendPath := cfg.FrontendDistPath
	serveFrontend := frontendPath != "" && dirExists(frontendPath)

	// CORS configuration for the overlay origin
	config := cors.DefaultConfig()
	config.AllowOrigins = cfg.CORSOrigins
	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization"}
	config.AllowCredentials = false // Explicitly set
	router.Use(cors.New(config))

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(svc.Session)
	roundHandler := handlers.NewRoundHandler(svc.Rounds)
	ocrHandler := handlers.NewOCRHandler(svc.OCR)
	settingsHandler := handlers.NewSettingsHandler(svc.Settings)

	// API routes
	api := router.Group("/api")
	{
		api.GET("/session", sessionHandler.GetSession)

		// Reading routes
		readings := api.Group("/readings")
		{
			readings.GET("", sessionHandler.GetReadings)
			readings.POST("", sessionHandler.AddReading)
			readings.DELETE("", sessionHandler.ClearReadings)
		}

		api.GET("/rounds", roundHandler.GetRounds)

		// OCR routes
		ocr := api.Group("/ocr")
		{
			ocr.GET("/status", ocrHandler.GetStatus)
			ocr.POST("/start", ocrHandler.Start)
			ocr.POST("/stop", ocrHandler.Stop)
			ocr.POST("/frame", ocrHandler.SubmitFrame)
			ocr.POST("/error", ocrHandler.ReportError)
		}

		// Settings routes
		settings := api.Group("/settings")
		{
			settings.GET("/capture-area", settingsHandler.GetCaptureArea)
			settings.PUT("/capture-area", settingsHandler.SaveCaptureArea)
			settings.DELETE("/capture-area", settingsHandler.ResetCaptureArea)
		}

		api.GET("/translations", handlers.GetTranslations)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Serve frontend static files
	if serveFrontend {
		indexPath := filepath.Join(frontendPath, "index.html")

		// Serve static assets
		router.Static("/assets", filepath.Join(frontendPath, "assets"))

		// Serve root index.html
		router.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})

		// SPA fallback - serve index.html for all non-API routes
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.File(indexPath)
		})
	}

	return router
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
