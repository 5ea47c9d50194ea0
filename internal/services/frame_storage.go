package services

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FrameStorageService keeps frames that produced no reading, for tuning the capture area
type FrameStorageService struct {
	storageDir string
}

// NewFrameStorageService returns nil when dir is empty, which disables frame storage
func NewFrameStorageService(dir string) *FrameStorageService {
	if dir == "" {
		return nil
	}

	// Ensure the storage directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		// Log error but don't fail - will fail on actual writes
		log.Printf("Warning: could not create debug frame directory: %v", err)
	}

	return &FrameStorageService{storageDir: dir}
}

// SaveFrame writes frame data to disk and returns the filename
func (s *FrameStorageService) SaveFrame(frame []byte) (string, error) {
	if len(frame) == 0 {
		return "", fmt.Errorf("empty frame data")
	}

	ext := ".png"
	if http.DetectContentType(frame) == "image/jpeg" {
		ext = ".jpg"
	}
	filename := uuid.New().String() + ext

	if err := os.WriteFile(filepath.Join(s.storageDir, filename), frame, 0644); err != nil {
		return "", fmt.Errorf("failed to save frame: %w", err)
	}
	return filename, nil
}

// StorageDir returns the storage directory path
func (s *FrameStorageService) StorageDir() string {
	return s.storageDir
}
