package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/aviator-overlay/backend/internal/models"
)

// ErrInvalidCaptureArea is returned when saving an area with a non-positive size or negative origin
var ErrInvalidCaptureArea = errors.New("capture area must have positive width/height and non-negative x/y")

// SettingsService persists overlay settings in the settings table
type SettingsService struct {
	db *gorm.DB

	mu       sync.RWMutex
	area     models.CaptureArea
	isCustom bool
	loaded   bool
}

// NewSettingsService creates a settings service backed by db
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// GetCaptureArea returns the saved capture area, or the default when none is stored.
// The bool result is true when the default is returned.
func (s *SettingsService) GetCaptureArea() (models.CaptureArea, bool, error) {
	s.mu.RLock()
	if s.loaded {
		area, isDefault := s.area, !s.isCustom
		s.mu.RUnlock()
		return area, isDefault, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	var setting models.Setting
	err := s.db.Where("key = ?", models.CaptureAreaKey).First(&setting).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.area, s.isCustom = models.DefaultCaptureArea(), false
	case err != nil:
		return models.DefaultCaptureArea(), true, fmt.Errorf("failed to load capture area: %w", err)
	default:
		var area models.CaptureArea
		if err := json.Unmarshal([]byte(setting.Value), &area); err != nil || !area.Valid() {
			log.Printf("Settings: ignoring malformed capture area %q", setting.Value)
			s.area, s.isCustom = models.DefaultCaptureArea(), false
		} else {
			s.area, s.isCustom = area, true
		}
	}
	s.loaded = true
	return s.area, !s.isCustom, nil
}

// CurrentCaptureArea returns the area to crop frames to, falling back to the default on error
func (s *SettingsService) CurrentCaptureArea() *models.CaptureArea {
	area, _, err := s.GetCaptureArea()
	if err != nil {
		log.Printf("Settings: %v", err)
	}
	return &area
}

// SaveCaptureArea validates and stores the capture area
func (s *SettingsService) SaveCaptureArea(area models.CaptureArea) error {
	if !area.Valid() {
		return ErrInvalidCaptureArea
	}

	data, err := json.Marshal(area)
	if err != nil {
		return fmt.Errorf("failed to encode capture area: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	setting := models.Setting{
		Key:       models.CaptureAreaKey,
		Value:     string(data),
		UpdatedAt: time.Now(),
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to save capture area: %w", err)
	}

	s.area, s.isCustom, s.loaded = area, true, true
	log.Printf("Settings: capture area saved (%d,%d %dx%d)", area.X, area.Y, area.Width, area.Height)
	return nil
}

// ResetCaptureArea removes the saved capture area so the default applies again
func (s *SettingsService) ResetCaptureArea() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Where("key = ?", models.CaptureAreaKey).Delete(&models.Setting{}).Error; err != nil {
		return fmt.Errorf("failed to reset capture area: %w", err)
	}

	s.area, s.isCustom, s.loaded = models.DefaultCaptureArea(), false, true
	log.Println("Settings: capture area reset to default")
	return nil
}
