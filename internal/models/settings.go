package models

import (
	"time"
)

// Setting is a persisted key-value entry
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CaptureAreaKey is the settings key the ROI geometry is stored under
const CaptureAreaKey = "captureArea"

// CaptureArea is the screen region sampled for OCR, in device pixels
type CaptureArea struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultCaptureArea is used when nothing has been saved
func DefaultCaptureArea() CaptureArea {
	return CaptureArea{X: 50, Y: 100, Width: 200, Height: 400}
}

// Valid reports whether the area has a positive size and a non-negative origin
func (a CaptureArea) Valid() bool {
	return a.X >= 0 && a.Y >= 0 && a.Width > 0 && a.Height > 0
}

// CaptureAreaResponse is returned by the settings endpoints
type CaptureAreaResponse struct {
	Area      CaptureArea `json:"area"`
	IsDefault bool        `json:"is_default"`
}
