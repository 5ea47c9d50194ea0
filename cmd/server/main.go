package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codyseavey/aviator-overlay/backend/internal/api"
	"github.com/codyseavey/aviator-overlay/backend/internal/config"
	"github.com/codyseavey/aviator-overlay/backend/internal/database"
	"github.com/codyseavey/aviator-overlay/backend/internal/models"
	"github.com/codyseavey/aviator-overlay/backend/internal/services"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	services.SetDebug(cfg.Debug)

	// Initialize database
	if err := database.Initialize(cfg.DBPath, cfg.Debug); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	db := database.GetDB()

	// Initialize services
	settingsService := services.NewSettingsService(db)
	roundLogService := services.NewRoundLogService(db, cfg.RoundLog.RetentionDays, cfg.RoundLog.PruneInterval)

	predictionService := services.NewPredictionService(services.PredictionConfig{
		APIKey:     cfg.Gemini.APIKey,
		Model:      cfg.Gemini.Model,
		BaseURL:    cfg.Gemini.BaseURL,
		Timeout:    cfg.Prediction.Timeout,
		RatePerMin: cfg.Prediction.RatePerMin,
		CacheSize:  cfg.Prediction.CacheSize,
	})

	session := services.NewSession(cfg.Prediction.MaxHistory, predictionService, roundLogService, cfg.Prediction.Timeout)

	// OCR readings feed the same session as manual entry
	ocrService := services.NewMultiplierOCRService(cfg.OCR.TesseractPath, cfg.OCR.Language)
	ocrWorker := services.NewOCRWorker(ocrService, func(v float64) {
		session.AddReading(v, models.SourceOCR)
	}, settingsService.CurrentCaptureArea)
	ocrWorker.SetFrameTimeout(cfg.OCR.FrameTimeout)
	if frameStorage := services.NewFrameStorageService(cfg.OCR.DebugFrameDir); frameStorage != nil {
		ocrWorker.SetFrameSaver(frameStorage)
		log.Printf("Saving unreadable OCR frames to %s", frameStorage.StorageDir())
	}

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start round log retention in background
	go roundLogService.Start(ctx)

	// Setup router
	router := api.SetupRouter(api.RouterConfig{
		CORSOrigins:      cfg.CORSOrigins,
		FrontendDistPath: cfg.FrontendDistPath,
	}, api.Services{
		Session:  session,
		OCR:      ocrWorker,
		Settings: settingsService,
		Rounds:   roundLogService,
	})

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop background workers
	cancel()
	ocrWorker.Stop()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := session.Shutdown(shutdownCtx); err != nil {
		log.Printf("Pending predictions abandoned: %v", err)
	}

	log.Println("Server exited")
}
