package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/codyseavey/aviator-overlay/backend/internal/estimator"
	"github.com/codyseavey/aviator-overlay/backend/internal/history"
	"github.com/codyseavey/aviator-overlay/backend/internal/metrics"
	"github.com/codyseavey/aviator-overlay/backend/internal/models"
)

// Predictor produces a prediction for a newest-first history
type Predictor interface {
	Predict(ctx context.Context, readings []models.Reading) (models.Prediction, error)
}

// RoundRecorder persists accepted readings
type RoundRecorder interface {
	Record(r models.Reading, source models.ReadingSource) error
}

// SessionState is a consistent snapshot of the session
type SessionState struct {
	History         []models.Reading  `json:"history"`
	Trend           models.Trend      `json:"trend"`
	Confidence      models.Confidence `json:"confidence"`
	ConfidenceScore float64           `json:"confidence_score"`
	Prediction      models.Prediction `json:"prediction"`
	PredictionError string            `json:"prediction_error,omitempty"`
	IsLoading       bool              `json:"is_loading"`
	Summary         estimator.Summary `json:"summary"`
	MaxHistory      int               `json:"max_history"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// AddResult describes the outcome of offering a reading to the session
type AddResult struct {
	Reading models.Reading `json:"reading"`
	Added   bool           `json:"added"`
	Reason  string         `json:"reason,omitempty"` // "duplicate" or "invalid" when not added
}

// Session owns the reading history and the current prediction. It sequences
// history mutation, trend and confidence derivation, and the asynchronous prediction call.
type Session struct {
	mu sync.RWMutex

	history       *history.Store
	prediction    models.Prediction
	predictionErr string
	updatedAt     time.Time

	// generation increases on every prediction launch and every Clear. A response is applied
	// only if its generation is newer than both the last applied one and the last Clear.
	generation        uint64
	appliedGeneration uint64
	clearedGeneration uint64
	inFlight          int

	predictor Predictor
	recorder  RoundRecorder
	timeout   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSession creates an empty session. recorder may be nil.
func NewSession(maxHistory int, predictor Predictor, recorder RoundRecorder, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = defaultGeminiTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		history:    history.New(maxHistory),
		prediction: models.DefaultPrediction(),
		predictor:  predictor,
		recorder:   recorder,
		timeout:    timeout,
		updatedAt:  time.Now(),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// AddReading offers a value to the history. Invalid values and consecutive duplicates are
// absorbed without error. Once the history holds enough readings a prediction is requested
// in the background.
func (s *Session) AddReading(value float64, source models.ReadingSource) AddResult {
	s.mu.Lock()

	if !history.ValidValue(value) {
		s.mu.Unlock()
		metrics.ReadingsTotal.WithLabelValues(string(source), "invalid").Inc()
		return AddResult{Reason: "invalid"}
	}

	reading, added := s.history.Add(value)
	if !added {
		s.mu.Unlock()
		metrics.ReadingsTotal.WithLabelValues(string(source), "duplicate").Inc()
		debugLog("Session: duplicate reading %.2fx from %s ignored", value, source)
		return AddResult{Reason: "duplicate"}
	}

	s.updatedAt = reading.ObservedAt
	length := s.history.Len()
	if length >= models.MinPredictionHistory {
		s.launchPredictionLocked()
	}
	s.mu.Unlock()

	metrics.ReadingsTotal.WithLabelValues(string(source), "added").Inc()
	metrics.ReadingsByCategory.WithLabelValues(string(reading.Category)).Inc()
	metrics.HistoryLength.Set(float64(length))

	if s.recorder != nil {
		if err := s.recorder.Record(reading, source); err != nil {
			log.Printf("Session: failed to record round %s: %v", reading.ID, err)
		}
	}

	return AddResult{Reading: reading, Added: true}
}

// launchPredictionLocked starts a prediction for the current history. Caller holds s.mu.
func (s *Session) launchPredictionLocked() {
	if s.predictor == nil {
		return
	}

	s.generation++
	gen := s.generation
	readings := s.history.Readings()
	s.inFlight++
	metrics.PredictionsInFlight.Inc()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()

		pred, err := s.predictor.Predict(ctx, readings)
		s.applyPrediction(gen, pred, err)
	}()
}

func (s *Session) applyPrediction(gen uint64, pred models.Prediction, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight--
	metrics.PredictionsInFlight.Dec()

	if gen <= s.appliedGeneration || gen <= s.clearedGeneration {
		metrics.PredictionsDiscardedTotal.Inc()
		debugLog("Session: discarding stale prediction (gen=%d, applied=%d, cleared=%d)", gen, s.appliedGeneration, s.clearedGeneration)
		return
	}

	s.appliedGeneration = gen
	s.prediction = pred
	s.predictionErr = ""
	if err != nil {
		s.predictionErr = err.Error()
	}
	s.updatedAt = time.Now()

	if score, ok := estimator.ConfidenceScore(s.history.Len(), pred.Probabilities); ok {
		metrics.ConfidenceScoreHistogram.Observe(score)
	}
}

// Clear empties the history and resets the prediction to its default.
// In-flight predictions started before the clear are discarded when they complete.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Clear()
	s.prediction = models.DefaultPrediction()
	s.predictionErr = ""
	s.generation++
	s.clearedGeneration = s.generation
	s.updatedAt = time.Now()

	metrics.HistoryClearsTotal.Inc()
	metrics.HistoryLength.Set(0)
	log.Println("Session: history cleared")
}

// State returns the current history together with derived trend, confidence and summary
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	readings := s.history.Readings()
	length := len(readings)
	score, _ := estimator.ConfidenceScore(length, s.prediction.Probabilities)

	return SessionState{
		History:         readings,
		Trend:           estimator.Trend(s.history.Values()),
		Confidence:      estimator.Confidence(length, s.prediction.Probabilities),
		ConfidenceScore: score,
		Prediction:      s.prediction,
		PredictionError: s.predictionErr,
		IsLoading:       s.inFlight > 0,
		Summary:         estimator.Summarize(readings),
		MaxHistory:      s.history.MaxLen(),
		UpdatedAt:       s.updatedAt,
	}
}

// Readings returns the history, newest first
func (s *Session) Readings() []models.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Readings()
}

// Wait blocks until all in-flight predictions have completed
func (s *Session) Wait() {
	s.wg.Wait()
}

// Shutdown cancels in-flight predictions and waits for them to return, or for ctx to expire
func (s *Session) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
