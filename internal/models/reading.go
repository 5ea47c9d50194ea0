package models

import (
	"time"
)

// Category buckets a multiplier reading.
type Category string

const (
	CategoryLow    Category = "Low"
	CategoryMedium Category = "Medium"
	CategoryHigh   Category = "High"
)

// Category thresholds (inclusive upper bounds)
const (
	LowThreshold    = 1.3
	MediumThreshold = 5.0
)

// MaxHistoryLength is the default bound of the reading history
const MaxHistoryLength = 50

// CategoryFor returns the category for a multiplier value.
func CategoryFor(value float64) Category {
	if value <= LowThreshold {
		return CategoryLow
	}
	if value <= MediumThreshold {
		return CategoryMedium
	}
	return CategoryHigh
}

// AllCategories returns the categories in ascending order of value
func AllCategories() []Category {
	return []Category{CategoryLow, CategoryMedium, CategoryHigh}
}

// ReadingSource identifies where a reading came from
type ReadingSource string

const (
	SourceManual ReadingSource = "manual"
	SourceOCR    ReadingSource = "ocr"
)

// Reading is a single observed round multiplier. Category is fixed at creation.
type Reading struct {
	ID         string    `json:"id"`
	Value      float64   `json:"value"`
	Category   Category  `json:"category"`
	ObservedAt time.Time `json:"observed_at"`
}

// Trend is a short-window classification over the newest readings
type Trend string

const (
	TrendIncreasing Trend = "Increasing"
	TrendDecreasing Trend = "Decreasing"
	TrendVolatile   Trend = "Volatile"
	TrendStable     Trend = "Stable"
	TrendNeutral    Trend = "Neutral"
)

// Confidence is the heuristic certainty tier of the current prediction
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// AddReadingRequest is the manual entry payload
type AddReadingRequest struct {
	Value *float64 `json:"value" binding:"required"`
}
