package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/aviator-overlay/backend/internal/database"
	"github.com/codyseavey/aviator-overlay/backend/internal/models"
	"github.com/codyseavey/aviator-overlay/backend/internal/services"
)

type stubPredictor struct{}

func (stubPredictor) Predict(_ context.Context, readings []models.Reading) (models.Prediction, error) {
	return models.Prediction{
		PatternAnalysis:     "stub",
		NextRoundPrediction: "High",
		Probabilities:       models.Probabilities{Low: 5, Medium: 10, High: 85},
		CashOutTarget:       2.0,
		InvestmentAdvice:    "stub advice",
	}, nil
}

type stubRecognizer struct {
	value float64
}

func (stubRecognizer) Init(context.Context) error { return nil }

func (s stubRecognizer) Recognize(context.Context, []byte, *models.CaptureArea) (float64, bool, error) {
	return s.value, true, nil
}

type testServer struct {
	router  *gin.Engine
	session *services.Session
	worker  *services.OCRWorker
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), false)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	rounds := services.NewRoundLogService(db, 30, time.Hour)
	settings := services.NewSettingsService(db)
	session := services.NewSession(50, stubPredictor{}, rounds, time.Second)
	worker := services.NewOCRWorker(stubRecognizer{value: 3.3}, func(v float64) {
		session.AddReading(v, models.SourceOCR)
	}, settings.CurrentCaptureArea)
	t.Cleanup(worker.Stop)

	router := SetupRouter(RouterConfig{}, Services{
		Session:  session,
		OCR:      worker,
		Settings: settings,
		Rounds:   rounds,
	})
	return &testServer{router: router, session: session, worker: worker}
}

func (s *testServer) do(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/health", "")

	w := s.do(t, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "aviator_http_requests_total") {
		t.Error("Expected HTTP request metrics in exposition")
	}
}

func TestAddReading(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/readings", `{"value": 2.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Added   bool           `json:"added"`
		Reading models.Reading `json:"reading"`
	}
	decode(t, w, &resp)
	if !resp.Added || resp.Reading.Category != models.CategoryMedium {
		t.Errorf("Unexpected response %+v", resp)
	}

	// Duplicate is not an error
	w = s.do(t, http.MethodPost, "/api/readings", `{"value": 2.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for duplicate, got %d", w.Code)
	}
	decode(t, w, &resp)
	if resp.Added {
		t.Error("Duplicate should not be added")
	}
}

func TestAddReadingInvalid(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{`{"value": -1}`, `{"value": 0}`, `{}`, `not json`} {
		w := s.do(t, http.MethodPost, "/api/readings", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Body %s: expected 400, got %d", body, w.Code)
		}
	}

	w := s.do(t, http.MethodPost, "/api/readings?lang=bn", `{"value": -1}`)
	var resp map[string]string
	decode(t, w, &resp)
	if resp["error"] != "একটি ধনাত্মক গুণক লিখুন।" {
		t.Errorf("Expected Bengali error, got %q", resp["error"])
	}

	if n := len(s.session.Readings()); n != 0 {
		t.Errorf("Expected empty history, got %d", n)
	}
}

func TestSessionPredictionAndClear(t *testing.T) {
	s := newTestServer(t)

	for _, v := range []float64{1.1, 2.2, 3.3, 4.4, 5.5} {
		s.do(t, http.MethodPost, "/api/readings", `{"value": `+strconvFloat(v)+`}`)
	}
	s.session.Wait()

	w := s.do(t, http.MethodGet, "/api/session", "")
	var state struct {
		History    []models.Reading  `json:"history"`
		Trend      models.Trend      `json:"trend"`
		Confidence models.Confidence `json:"confidence"`
		Prediction models.Prediction `json:"prediction"`
		Labels     struct {
			Trend      string `json:"trend"`
			Confidence string `json:"confidence"`
		} `json:"labels"`
	}
	decode(t, w, &state)

	if len(state.History) != 5 || state.History[0].Value != 5.5 {
		t.Errorf("Unexpected history %+v", state.History)
	}
	if state.Trend != models.TrendIncreasing || state.Labels.Trend != "Increasing" {
		t.Errorf("Unexpected trend %s (%s)", state.Trend, state.Labels.Trend)
	}
	if state.Prediction.NextRoundPrediction != "High" {
		t.Errorf("Expected stub prediction, got %+v", state.Prediction)
	}
	// 0.5*5/30 + 0.5*(85-10)/100 = 0.4583
	if state.Confidence != models.ConfidenceMedium {
		t.Errorf("Expected Medium confidence, got %s", state.Confidence)
	}

	w = s.do(t, http.MethodGet, "/api/rounds", "")
	var rounds struct {
		Count int `json:"count"`
	}
	decode(t, w, &rounds)
	if rounds.Count != 5 {
		t.Errorf("Expected 5 logged rounds, got %d", rounds.Count)
	}

	w = s.do(t, http.MethodDelete, "/api/readings", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	decode(t, w, &state)
	if len(state.History) != 0 || state.Prediction != models.DefaultPrediction() {
		t.Errorf("Expected cleared session, got %+v", state)
	}
}

func TestSessionLocalizedLabels(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Accept-Language", "bn-BD,bn;q=0.9,en;q=0.5")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp struct {
		Language string `json:"language"`
		Labels   struct {
			Confidence string `json:"confidence"`
		} `json:"labels"`
	}
	decode(t, w, &resp)
	if resp.Language != "bn" {
		t.Errorf("Expected bn, got %s", resp.Language)
	}
	if resp.Labels.Confidence != "নিম্ন" {
		t.Errorf("Expected Bengali confidence label, got %q", resp.Labels.Confidence)
	}
}

func TestRoundsInvalidLimit(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/rounds?limit=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestCaptureAreaEndpoints(t *testing.T) {
	s := newTestServer(t)

	var resp models.CaptureAreaResponse
	w := s.do(t, http.MethodGet, "/api/settings/capture-area", "")
	decode(t, w, &resp)
	if !resp.IsDefault || resp.Area != models.DefaultCaptureArea() {
		t.Errorf("Expected default area, got %+v", resp)
	}

	w = s.do(t, http.MethodPut, "/api/settings/capture-area", `{"x":5,"y":6,"width":70,"height":80}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/settings/capture-area", "")
	decode(t, w, &resp)
	want := models.CaptureArea{X: 5, Y: 6, Width: 70, Height: 80}
	if resp.IsDefault || resp.Area != want {
		t.Errorf("Expected %+v, got %+v", want, resp)
	}

	w = s.do(t, http.MethodPut, "/api/settings/capture-area", `{"x":5,"y":6,"width":0,"height":80}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid area, got %d", w.Code)
	}

	w = s.do(t, http.MethodDelete, "/api/settings/capture-area", "")
	decode(t, w, &resp)
	if !resp.IsDefault {
		t.Error("Expected default after reset")
	}
}

func TestOCREndpoints(t *testing.T) {
	s := newTestServer(t)

	frame := []byte{0x89, 'P', 'N', 'G'}
	postFrame := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/ocr/frame", bytes.NewReader(frame))
		req.Header.Set("Content-Type", "image/png")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	if w := postFrame(); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 before start, got %d", w.Code)
	}

	w := s.do(t, http.MethodPost, "/api/ocr/start", "")
	var status struct {
		Status models.OCRStatus `json:"status"`
		Label  string           `json:"label"`
		Error  string           `json:"error"`
	}
	decode(t, w, &status)
	if w.Code != http.StatusOK || status.Status != models.OCRStatusActive {
		t.Fatalf("Expected ACTIVE, got %d %+v", w.Code, status)
	}

	if w := postFrame(); w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", w.Code)
	}

	// The recognized value reaches the session
	deadline := time.Now().Add(2 * time.Second)
	for {
		readings := s.session.Readings()
		if len(readings) == 1 && readings[0].Value == 3.3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Recognized value not added, history=%+v", readings)
		}
		time.Sleep(5 * time.Millisecond)
	}

	w = s.do(t, http.MethodPost, "/api/ocr/error", `{"message":"Permission denied"}`)
	decode(t, w, &status)
	if status.Status != models.OCRStatusError || status.Error != "Permission denied" {
		t.Errorf("Expected ERROR status, got %+v", status)
	}

	w = s.do(t, http.MethodPost, "/api/ocr/stop", "")
	decode(t, w, &status)
	if status.Status != models.OCRStatusIdle || status.Label != "Idle" {
		t.Errorf("Expected IDLE status, got %+v", status)
	}
}

func TestOCRFrameEmptyBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/ocr/frame", nil)
	req.Header.Set("Content-Type", "image/png")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestTranslations(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/translations?lang=bn", "")
	var resp struct {
		Language string            `json:"language"`
		Messages map[string]string `json:"messages"`
	}
	decode(t, w, &resp)
	if resp.Language != "bn" {
		t.Errorf("Expected bn, got %s", resp.Language)
	}
	if resp.Messages["confidenceLow"] != "নিম্ন" {
		t.Errorf("Unexpected translation %q", resp.Messages["confidenceLow"])
	}

	w = s.do(t, http.MethodGet, "/api/translations?lang=fr", "")
	decode(t, w, &resp)
	if resp.Language != "en" {
		t.Errorf("Expected fallback to en, got %s", resp.Language)
	}
}

func strconvFloat(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
