// Package estimator derives trend, confidence and summary statistics from a reading history.
// Every function here is pure.
package estimator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/codyseavey/aviator-overlay/backend/internal/models"
)

const (
	trendWindow = 4

	volatileRange = 4.0
	stableRange   = 1.5

	// History length at which the data half of the confidence score saturates
	confidenceSaturation = 30.0
	highConfidenceScore  = 0.7
	midConfidenceScore   = 0.45

	recentWindow = 5
	minStreak    = 3
)

// Trend classifies the newest four values (values are newest first).
func Trend(values []float64) models.Trend {
	if len(values) < trendWindow {
		return models.TrendNeutral
	}

	// chronological: v[3] is the most recent
	var v [trendWindow]float64
	for i := 0; i < trendWindow; i++ {
		v[trendWindow-1-i] = values[i]
	}

	if v[3] > v[2] && v[2] > v[1] {
		return models.TrendIncreasing
	}
	if v[3] < v[2] && v[2] < v[1] {
		return models.TrendDecreasing
	}

	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	spread := hi - lo
	switch {
	case spread > volatileRange:
		return models.TrendVolatile
	case spread < stableRange:
		return models.TrendStable
	default:
		return models.TrendNeutral
	}
}

// ConfidenceScore returns the blended data/probability-spread score. ok is false when the
// history is too short to score.
func ConfidenceScore(historyLen int, p models.Probabilities) (score float64, ok bool) {
	if historyLen < models.MinPredictionHistory {
		return 0, false
	}

	dataScore := math.Min(float64(historyLen)/confidenceSaturation, 1.0)

	probs := []float64{p.Low, p.Medium, p.High}
	sort.Sort(sort.Reverse(sort.Float64Slice(probs)))
	spread := (probs[0] - probs[1]) / 100

	return 0.5*dataScore + 0.5*spread, true
}

// Confidence tiers the current prediction by history size and probability spread.
func Confidence(historyLen int, p models.Probabilities) models.Confidence {
	score, ok := ConfidenceScore(historyLen, p)
	if !ok {
		return models.ConfidenceLow
	}
	if score > highConfidenceScore {
		return models.ConfidenceHigh
	}
	if score > midConfidenceScore {
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}

// Summary holds the aggregate statistics sent along with a prediction request
type Summary struct {
	Total          int                     `json:"total"`
	Counts         map[models.Category]int `json:"counts"`
	Percentages    map[models.Category]int `json:"percentages"`
	RecentTrend    string                  `json:"recent_trend"`
	Streak         string                  `json:"streak"`
	StreakLength   int                     `json:"streak_length"`
	StreakCategory models.Category         `json:"streak_category,omitempty"`
	Average        float64                 `json:"average"`
	Highest        float64                 `json:"highest"`
}

// Summarize computes category distribution, recent trend, streak, average and maximum.
// readings are newest first.
func Summarize(readings []models.Reading) Summary {
	s := Summary{
		Total:       len(readings),
		Counts:      make(map[models.Category]int, 3),
		Percentages: make(map[models.Category]int, 3),
		Streak:      "No significant streak.",
	}
	for _, c := range models.AllCategories() {
		s.Counts[c] = 0
		s.Percentages[c] = 0
	}
	if len(readings) == 0 {
		return s
	}

	var total float64
	s.Highest = readings[0].Value
	for _, r := range readings {
		s.Counts[r.Category]++
		total += r.Value
		if r.Value > s.Highest {
			s.Highest = r.Value
		}
	}
	s.Average = total / float64(len(readings))
	for c, n := range s.Counts {
		s.Percentages[c] = int(math.Round(float64(n) / float64(len(readings)) * 100))
	}

	recent := readings
	if len(recent) > recentWindow {
		recent = recent[:recentWindow]
	}
	parts := make([]string, len(recent))
	for i, r := range recent {
		parts[i] = fmt.Sprintf("%.2fx (%s)", r.Value, r.Category)
	}
	s.RecentTrend = strings.Join(parts, ", ")

	s.StreakLength, s.StreakCategory = streak(readings)
	if s.StreakLength > 0 {
		s.Streak = fmt.Sprintf("%d consecutive %s rounds.", s.StreakLength, s.StreakCategory)
	}
	return s
}

// streak returns the run length of the newest category, or 0 when shorter than minStreak
func streak(readings []models.Reading) (int, models.Category) {
	if len(readings) < minStreak {
		return 0, ""
	}
	first := readings[0].Category
	n := 1
	for _, r := range readings[1:] {
		if r.Category != first {
			break
		}
		n++
	}
	if n < minStreak {
		return 0, ""
	}
	return n, first
}

// HistoryString formats values newest first with two decimals
func HistoryString(readings []models.Reading) string {
	parts := make([]string, len(readings))
	for i, r := range readings {
		parts[i] = fmt.Sprintf("%.2f", r.Value)
	}
	return strings.Join(parts, ", ")
}
