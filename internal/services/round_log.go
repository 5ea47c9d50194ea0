package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/codyseavey/aviator-overlay/backend/internal/metrics"
	"github.com/codyseavey/aviator-overlay/backend/internal/models"
)

const (
	defaultRoundLimit = 100
	maxRoundLimit     = 1000
)

// RoundLogService persists accepted readings and prunes old ones
type RoundLogService struct {
	db            *gorm.DB
	retention     time.Duration
	checkInterval time.Duration
}

// NewRoundLogService creates a round log. retentionDays <= 0 keeps rows forever.
func NewRoundLogService(db *gorm.DB, retentionDays int, checkInterval time.Duration) *RoundLogService {
	if checkInterval <= 0 {
		checkInterval = time.Hour
	}
	return &RoundLogService{
		db:            db,
		retention:     time.Duration(retentionDays) * 24 * time.Hour,
		checkInterval: checkInterval,
	}
}

// Record stores a reading
func (s *RoundLogService) Record(r models.Reading, source models.ReadingSource) error {
	row := models.NewRoundLog(r, source)
	if err := s.db.Create(&row).Error; err != nil {
		metrics.RoundLogWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to record round: %w", err)
	}
	metrics.RoundLogWritesTotal.WithLabelValues("ok").Inc()
	return nil
}

// ClampRoundLimit applies the default and maximum page size
func ClampRoundLimit(limit int) int {
	if limit <= 0 {
		return defaultRoundLimit
	}
	return min(limit, maxRoundLimit)
}

// Recent returns up to limit rounds, newest first
func (s *RoundLogService) Recent(limit int) ([]models.RoundLog, error) {
	var rounds []models.RoundLog
	err := s.db.Order("observed_at DESC, id DESC").Limit(ClampRoundLimit(limit)).Find(&rounds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

// Prune deletes rounds observed before now minus the retention period
func (s *RoundLogService) Prune(now time.Time) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}

	result := s.db.Where("observed_at < ?", now.Add(-s.retention)).Delete(&models.RoundLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune rounds: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		metrics.RoundLogPrunedTotal.Add(float64(result.RowsAffected))
		log.Printf("Round log: pruned %d rounds older than %s", result.RowsAffected, s.retention)
	}
	return result.RowsAffected, nil
}

// Start runs the retention worker until ctx is cancelled
func (s *RoundLogService) Start(ctx context.Context) {
	if s.retention <= 0 {
		log.Println("Round log retention disabled")
		return
	}
	log.Printf("Round log retention started: keeping %s", s.retention)

	s.prune()

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Round log retention stopping...")
			return
		case <-ticker.C:
			s.prune()
		}
	}
}

func (s *RoundLogService) prune() {
	if _, err := s.Prune(time.Now()); err != nil {
		log.Printf("Round log: %v", err)
	}
}
