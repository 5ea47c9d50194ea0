package estimator

import (
	"testing"

	"github.com/codyseavey/aviator-overlay/backend/internal/models"
)

// newestFirst turns a chronological sequence into history order
func newestFirst(chrono ...float64) []float64 {
	out := make([]float64, len(chrono))
	for i, v := range chrono {
		out[len(chrono)-1-i] = v
	}
	return out
}

func readings(chrono ...float64) []models.Reading {
	values := newestFirst(chrono...)
	out := make([]models.Reading, len(values))
	for i, v := range values {
		out[i] = models.Reading{Value: v, Category: models.CategoryFor(v)}
	}
	return out
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name   string
		chrono []float64
		want   models.Trend
	}{
		{"empty history", nil, models.TrendNeutral},
		{"fewer than four", []float64{1.0, 2.0, 3.0}, models.TrendNeutral},
		{"strictly increasing", []float64{1.0, 2.0, 3.0, 4.0}, models.TrendIncreasing},
		{"oldest sample ignored for rise", []float64{9.0, 1.0, 2.0, 3.0}, models.TrendIncreasing},
		{"strictly decreasing", []float64{4.0, 3.0, 2.0, 1.5}, models.TrendDecreasing},
		{"equal values fall through to stable", []float64{1.2, 1.5, 1.5, 1.5}, models.TrendStable},
		{"volatile range", []float64{1.0, 8.0, 1.1, 1.2}, models.TrendVolatile},
		{"neutral range", []float64{1.0, 3.0, 1.1, 1.2}, models.TrendNeutral},
		{"range of exactly 4 is not volatile", []float64{1.0, 5.0, 1.0, 1.0}, models.TrendNeutral},
		{"range of exactly 1.5 is not stable", []float64{1.0, 2.5, 1.0, 1.0}, models.TrendNeutral},
		{"increasing wins over volatile", []float64{1.0, 2.0, 3.0, 20.0}, models.TrendIncreasing},
		{"only newest four count", []float64{50.0, 1.0, 1.1, 1.0, 1.2}, models.TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Trend(newestFirst(tt.chrono...)); got != tt.want {
				t.Errorf("Trend(%v) = %s, want %s", tt.chrono, got, tt.want)
			}
		})
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name  string
		len   int
		probs models.Probabilities
		want  models.Confidence
	}{
		{"short history is low regardless", 3, models.Probabilities{Low: 100}, models.ConfidenceLow},
		{"long history wide spread", 40, models.Probabilities{Low: 70, Medium: 20, High: 10}, models.ConfidenceHigh},
		{"long history flat spread", 40, models.Probabilities{Low: 34, Medium: 33, High: 33}, models.ConfidenceMedium},
		{"minimum history flat spread", 5, models.Probabilities{Low: 40, Medium: 35, High: 25}, models.ConfidenceLow},
		{"mid history mid spread", 15, models.Probabilities{Low: 60, Medium: 30, High: 10}, models.ConfidenceLow},
		{"unsorted probabilities", 30, models.Probabilities{Low: 10, Medium: 15, High: 75}, models.ConfidenceHigh},
		{"default prediction", 30, models.Probabilities{}, models.ConfidenceMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Confidence(tt.len, tt.probs); got != tt.want {
				t.Errorf("Confidence(%d, %+v) = %s, want %s", tt.len, tt.probs, got, tt.want)
			}
		})
	}
}

func TestConfidenceScore(t *testing.T) {
	score, ok := ConfidenceScore(40, models.Probabilities{Low: 70, Medium: 20, High: 10})
	if !ok {
		t.Fatal("expected a score for 40 readings")
	}
	if score < 0.7499 || score > 0.7501 {
		t.Errorf("score = %v, want 0.75", score)
	}

	if _, ok := ConfidenceScore(4, models.Probabilities{}); ok {
		t.Error("expected no score for 4 readings")
	}
}

func TestSummarize(t *testing.T) {
	// chronological: oldest first; newest is 1.2
	s := Summarize(readings(10.0, 2.0, 1.1, 1.25, 1.2))

	if s.Total != 5 {
		t.Errorf("Total = %d, want 5", s.Total)
	}
	if s.Counts[models.CategoryLow] != 3 || s.Counts[models.CategoryMedium] != 1 || s.Counts[models.CategoryHigh] != 1 {
		t.Errorf("Counts = %v", s.Counts)
	}
	if s.Percentages[models.CategoryLow] != 60 || s.Percentages[models.CategoryMedium] != 20 {
		t.Errorf("Percentages = %v", s.Percentages)
	}
	if s.StreakLength != 3 || s.StreakCategory != models.CategoryLow {
		t.Errorf("streak = %d %s, want 3 Low", s.StreakLength, s.StreakCategory)
	}
	if s.Streak != "3 consecutive Low rounds." {
		t.Errorf("Streak = %q", s.Streak)
	}
	if s.Highest != 10.0 {
		t.Errorf("Highest = %v, want 10", s.Highest)
	}
	if s.Average < 3.109 || s.Average > 3.111 {
		t.Errorf("Average = %v, want 3.11", s.Average)
	}
	want := "1.20x (Low), 1.25x (Low), 1.10x (Low), 2.00x (Medium), 10.00x (High)"
	if s.RecentTrend != want {
		t.Errorf("RecentTrend = %q, want %q", s.RecentTrend, want)
	}
}

func TestSummarize_NoStreak(t *testing.T) {
	s := Summarize(readings(1.1, 2.0, 1.2))
	if s.StreakLength != 0 {
		t.Errorf("StreakLength = %d, want 0", s.StreakLength)
	}
	if s.Streak != "No significant streak." {
		t.Errorf("Streak = %q", s.Streak)
	}
}

func TestSummarize_RecentLimitedToFive(t *testing.T) {
	s := Summarize(readings(1.5, 1.6, 1.7, 1.8, 1.9, 2.0, 2.1))
	want := "2.10x (Medium), 2.00x (Medium), 1.90x (Medium), 1.80x (Medium), 1.70x (Medium)"
	if s.RecentTrend != want {
		t.Errorf("RecentTrend = %q, want %q", s.RecentTrend, want)
	}
	if s.StreakLength != 7 {
		t.Errorf("StreakLength = %d, want 7", s.StreakLength)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.Average != 0 || s.RecentTrend != "" {
		t.Errorf("unexpected summary for empty history: %+v", s)
	}
}

func TestHistoryString(t *testing.T) {
	got := HistoryString(readings(1.0, 2.5, 10.0))
	if got != "10.00, 2.50, 1.00" {
		t.Errorf("HistoryString = %q", got)
	}
}
