package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/codyseavey/aviator-overlay/backend/internal/models"
)

// fakePredictor returns a prediction tagged with the history length. When gate is set,
// each call blocks until a value is sent for it.
type fakePredictor struct {
	mu    sync.Mutex
	calls int
	gates map[int]chan struct{} // history length -> release
	err   error
}

func (f *fakePredictor) Predict(ctx context.Context, readings []models.Reading) (models.Prediction, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gates[len(readings)]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.ErrorPrediction(), ctx.Err()
		}
	}
	if err != nil {
		return models.ErrorPrediction(), err
	}

	return models.Prediction{
		PatternAnalysis:     "history",
		NextRoundPrediction: "Medium",
		Probabilities:       models.Probabilities{Low: 10, Medium: 80, High: 10},
		CashOutTarget:       float64(len(readings)),
		InvestmentAdvice:    "hold",
	}, nil
}

func (f *fakePredictor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRecorder struct {
	mu      sync.Mutex
	sources []models.ReadingSource
}

func (f *fakeRecorder) Record(_ models.Reading, source models.ReadingSource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources = append(f.sources, source)
	return nil
}

func addAll(s *Session, values ...float64) {
	for _, v := range values {
		s.AddReading(v, models.SourceManual)
	}
}

func TestSessionAddReading(t *testing.T) {
	rec := &fakeRecorder{}
	s := NewSession(50, &fakePredictor{}, rec, time.Second)

	res := s.AddReading(2.5, models.SourceManual)
	if !res.Added {
		t.Fatal("Expected reading to be added")
	}
	if res.Reading.Category != models.CategoryMedium {
		t.Errorf("Expected Medium, got %s", res.Reading.Category)
	}

	res = s.AddReading(2.5, models.SourceOCR)
	if res.Added || res.Reason != "duplicate" {
		t.Errorf("Expected duplicate rejection, got %+v", res)
	}

	res = s.AddReading(-1, models.SourceManual)
	if res.Added || res.Reason != "invalid" {
		t.Errorf("Expected invalid rejection, got %+v", res)
	}

	state := s.State()
	if len(state.History) != 1 {
		t.Errorf("Expected 1 reading, got %d", len(state.History))
	}
	if len(rec.sources) != 1 || rec.sources[0] != models.SourceManual {
		t.Errorf("Expected one manual round recorded, got %v", rec.sources)
	}
}

func TestSessionNoPredictionBelowThreshold(t *testing.T) {
	pred := &fakePredictor{}
	s := NewSession(50, pred, nil, time.Second)

	addAll(s, 1.1, 2.2, 3.3, 4.4)
	s.Wait()

	if pred.callCount() != 0 {
		t.Errorf("Expected no prediction calls, got %d", pred.callCount())
	}
	state := s.State()
	if state.Prediction != models.DefaultPrediction() {
		t.Errorf("Expected default prediction, got %+v", state.Prediction)
	}
	if state.Confidence != models.ConfidenceLow {
		t.Errorf("Expected Low confidence, got %s", state.Confidence)
	}
}

func TestSessionPredictionApplied(t *testing.T) {
	pred := &fakePredictor{}
	s := NewSession(50, pred, nil, time.Second)

	addAll(s, 1.1, 2.2, 3.3, 4.4, 5.5)
	s.Wait()

	state := s.State()
	if state.IsLoading {
		t.Error("Expected loading to be false after completion")
	}
	if state.Prediction.CashOutTarget != 5 {
		t.Errorf("Expected prediction for 5 readings, got %+v", state.Prediction)
	}
	if state.Trend != models.TrendIncreasing {
		t.Errorf("Expected Increasing trend, got %s", state.Trend)
	}
	// 0.5*5/30 + 0.5*(80-10)/100 = 0.4333
	if state.Confidence != models.ConfidenceLow {
		t.Errorf("Expected Low confidence, got %s (score %.3f)", state.Confidence, state.ConfidenceScore)
	}
}

func TestSessionPredictionError(t *testing.T) {
	pred := &fakePredictor{err: errors.New("upstream down")}
	s := NewSession(50, pred, nil, time.Second)

	addAll(s, 1.1, 2.2, 3.3, 4.4, 5.5)
	s.Wait()

	state := s.State()
	if state.Prediction != models.ErrorPrediction() {
		t.Errorf("Expected error prediction, got %+v", state.Prediction)
	}
	if state.PredictionError != "upstream down" {
		t.Errorf("Expected prediction error to be surfaced, got %q", state.PredictionError)
	}
}

func TestSessionStalePredictionDiscarded(t *testing.T) {
	gate5 := make(chan struct{})
	pred := &fakePredictor{gates: map[int]chan struct{}{5: gate5}}
	s := NewSession(50, pred, nil, 5*time.Second)

	addAll(s, 1.1, 2.2, 3.3, 4.4, 5.5) // launches gated request for 5 readings
	addAll(s, 6.6)                     // launches ungated request for 6 readings

	// Wait until the 6-reading prediction lands.
	deadline := time.Now().Add(2 * time.Second)
	for s.State().Prediction.CashOutTarget != 6 {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for newer prediction")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !s.State().IsLoading {
		t.Error("Expected loading while the older request is in flight")
	}

	close(gate5)
	s.Wait()

	state := s.State()
	if state.Prediction.CashOutTarget != 6 {
		t.Errorf("Older response overwrote newer prediction: %+v", state.Prediction)
	}
	if state.IsLoading {
		t.Error("Expected loading to be false")
	}
}

func TestSessionClearDiscardsInFlight(t *testing.T) {
	gate := make(chan struct{})
	pred := &fakePredictor{gates: map[int]chan struct{}{5: gate}}
	s := NewSession(50, pred, nil, 5*time.Second)

	addAll(s, 1.1, 2.2, 3.3, 4.4, 5.5)
	s.Clear()
	close(gate)
	s.Wait()

	state := s.State()
	if len(state.History) != 0 {
		t.Errorf("Expected empty history, got %d", len(state.History))
	}
	if state.Prediction != models.DefaultPrediction() {
		t.Errorf("Expected default prediction after clear, got %+v", state.Prediction)
	}
	if state.Trend != models.TrendNeutral {
		t.Errorf("Expected Neutral trend, got %s", state.Trend)
	}
}

func TestSessionHistoryBound(t *testing.T) {
	s := NewSession(10, nil, nil, time.Second)
	for i := 1; i <= 25; i++ {
		s.AddReading(float64(i), models.SourceManual)
	}

	state := s.State()
	if len(state.History) != 10 {
		t.Fatalf("Expected 10 readings, got %d", len(state.History))
	}
	if state.History[0].Value != 25 || state.History[9].Value != 16 {
		t.Errorf("Unexpected window: newest %.0f, oldest %.0f", state.History[0].Value, state.History[9].Value)
	}
	if state.MaxHistory != 10 {
		t.Errorf("Expected max history 10, got %d", state.MaxHistory)
	}
}

func TestSessionShutdownCancelsInFlight(t *testing.T) {
	gate := make(chan struct{})
	pred := &fakePredictor{gates: map[int]chan struct{}{5: gate}}
	s := NewSession(50, pred, nil, time.Minute)

	addAll(s, 1.1, 2.2, 3.3, 4.4, 5.5)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}

func TestSessionConcurrentAccess(t *testing.T) {
	s := NewSession(50, &fakePredictor{}, nil, time.Second)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.AddReading(float64(g*100+i+1), models.SourceOCR)
				_ = s.State()
			}
		}(g)
	}
	wg.Wait()
	s.Wait()

	if n := len(s.State().History); n != 50 {
		t.Errorf("Expected history capped at 50, got %d", n)
	}
}
