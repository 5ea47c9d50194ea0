package models

import (
	"time"
)

// RoundLog persists an accepted reading
type RoundLog struct {
	ID         uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	ReadingID  string        `json:"reading_id" gorm:"uniqueIndex;not null"`
	Value      float64       `json:"value" gorm:"not null"`
	Category   Category      `json:"category" gorm:"index;not null"`
	Source     ReadingSource `json:"source" gorm:"default:'manual'"`
	ObservedAt time.Time     `json:"observed_at" gorm:"index"`
}

// NewRoundLog builds a log row for a reading
func NewRoundLog(r Reading, source ReadingSource) RoundLog {
	return RoundLog{
		ReadingID:  r.ID,
		Value:      r.Value,
		Category:   r.Category,
		Source:     source,
		ObservedAt: r.ObservedAt,
	}
}
