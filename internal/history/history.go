// Package history holds the bounded, newest-first sequence of observed multipliers.
// It performs no I/O and does no locking; callers serialize access.
package history

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/codyseavey/aviator-overlay/backend/internal/models"
)

// Store is a bounded newest-first reading history
type Store struct {
	maxLen   int
	readings []models.Reading
	now      func() time.Time
}

// New creates an empty store. maxLen <= 0 uses models.MaxHistoryLength.
func New(maxLen int) *Store {
	if maxLen <= 0 {
		maxLen = models.MaxHistoryLength
	}
	return &Store{
		maxLen:   maxLen,
		readings: make([]models.Reading, 0, maxLen+1),
		now:      time.Now,
	}
}

// ValidValue reports whether v can be recorded as a multiplier
func ValidValue(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Add prepends a reading for value. It returns false without mutating the store when the
// value is invalid or equal to the newest reading's value.
func (s *Store) Add(value float64) (models.Reading, bool) {
	if !ValidValue(value) {
		return models.Reading{}, false
	}
	if len(s.readings) > 0 && s.readings[0].Value == value {
		return models.Reading{}, false
	}

	r := models.Reading{
		ID:         uuid.New().String(),
		Value:      value,
		Category:   models.CategoryFor(value),
		ObservedAt: s.now(),
	}

	s.readings = append(s.readings, models.Reading{})
	copy(s.readings[1:], s.readings)
	s.readings[0] = r
	if len(s.readings) > s.maxLen {
		s.readings = s.readings[:s.maxLen]
	}
	return r, true
}

// Clear removes all readings
func (s *Store) Clear() {
	s.readings = s.readings[:0]
}

// Len returns the number of readings held
func (s *Store) Len() int {
	return len(s.readings)
}

// MaxLen returns the bound
func (s *Store) MaxLen() int {
	return s.maxLen
}

// Readings returns a copy of the history, newest first
func (s *Store) Readings() []models.Reading {
	out := make([]models.Reading, len(s.readings))
	copy(out, s.readings)
	return out
}

// Values returns the reading values, newest first
func (s *Store) Values() []float64 {
	out := make([]float64, len(s.readings))
	for i, r := range s.readings {
		out[i] = r.Value
	}
	return out
}

// Latest returns the newest reading
func (s *Store) Latest() (models.Reading, bool) {
	if len(s.readings) == 0 {
		return models.Reading{}, false
	}
	return s.readings[0], true
}
