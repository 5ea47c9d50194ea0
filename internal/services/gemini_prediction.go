package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/codyseavey/aviator-overlay/backend/internal/config"
	"github.com/codyseavey/aviator-overlay/backend/internal/estimator"
	"github.com/codyseavey/aviator-overlay/backend/internal/metrics"
	"github.com/codyseavey/aviator-overlay/backend/internal/models"
)

const (
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiTimeout = 30 * time.Second
	maxGeminiBodyBytes   = 1 << 20
)

// ErrPredictionDisabled is returned when no API key is configured
var ErrPredictionDisabled = errors.New("prediction service not enabled (no GOOGLE_API_KEY)")

// PredictionConfig configures the Gemini prediction client
type PredictionConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	RatePerMin int
	CacheSize  int
}

// PredictionService requests next-round advice from the Gemini API
type PredictionService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	enabled    bool
	limiter    *rate.Limiter
	cache      *lru.Cache[string, models.Prediction] // history fingerprint -> prediction
}

// geminiRequest is the request body for generateContent
type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenConfig struct {
	ResponseMimeType   string         `json:"responseMimeType"`
	ResponseJSONSchema map[string]any `json:"responseJsonSchema"`
	Temperature        float64        `json:"temperature"`
	MaxOutputTokens    int            `json:"maxOutputTokens"`
}

// geminiAPIResponse is the response from generateContent
type geminiAPIResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// predictionSchema enforces the structured JSON output from Gemini
var predictionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"patternAnalysis": map[string]any{
			"type":        "string",
			"description": `A brief analysis of recent patterns in the multiplier history. Example: "After a series of low multipliers, a medium one is likely."`,
		},
		"nextRoundPrediction": map[string]any{
			"type":        "string",
			"description": "The predicted range category for the next round (Low, Medium, or High).",
		},
		"probabilities": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"low":    map[string]any{"type": "number", "description": "Probability of a low result (<=1.3x) in percentage. e.g. 60"},
				"medium": map[string]any{"type": "number", "description": "Probability of a medium result (1.3x-5x) in percentage. e.g. 30"},
				"high":   map[string]any{"type": "number", "description": "Probability of a high result (>5x) in percentage. e.g. 10"},
			},
			"required": []string{"low", "medium", "high"},
		},
		"cashOutTarget": map[string]any{
			"type":        "number",
			"description": "A specific multiplier value to target for cashing out. e.g. 1.85",
		},
		"investmentAdvice": map[string]any{
			"type":        "string",
			"description": `Brief, actionable advice on investment for the next round. Example: "Consider a safe bet, aiming for a quick cash out."`,
		},
	},
	"required": []string{"patternAnalysis", "nextRoundPrediction", "probabilities", "cashOutTarget", "investmentAdvice"},
}

const predictionSystemInstruction = `You are an expert analyst for the game 'Aviator'. Your task is to predict the outcome of the next round based on statistical analysis of the game's history. You must provide your analysis in a structured JSON format without any additional commentary. The multiplier ranges are defined as: Low (<=1.3x), Medium (1.3x - 5x), High (>5x).`

const predictionPrompt = `**Game State Analysis**
- Total Rounds Analyzed: %d
- Category Distribution: Low: %d (%d%%), Medium: %d (%d%%), High: %d (%d%%)
- Recent Trend (last 5): %s
- Current Streak: %s
- Average Multiplier: %.2fx
- Highest Multiplier in History: %.2fx

**Full Multiplier History (most recent first):**
%s

Based on the comprehensive analysis above, provide a detailed prediction for the next round. Your response MUST be in the provided JSON schema.`

// NewPredictionService creates a new Gemini prediction client
func NewPredictionService(cfg PredictionConfig) *PredictionService {
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGeminiTimeout
	}

	svc := &PredictionService{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		enabled:    cfg.APIKey != "",
	}

	if cfg.RatePerMin > 0 {
		svc.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMin)), 2)
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, models.Prediction](cfg.CacheSize)
		if err != nil {
			infoLog("Prediction service: failed to create cache: %v", err)
		} else {
			svc.cache = cache
		}
	}

	if svc.enabled {
		infoLog("Prediction service: enabled (model=%s, key=%s, rate=%d/min)", svc.model, config.RedactKey(cfg.APIKey), cfg.RatePerMin)
	} else {
		infoLog("Prediction service: disabled (no GOOGLE_API_KEY)")
	}

	return svc
}

// IsEnabled returns whether Gemini is available
func (s *PredictionService) IsEnabled() bool {
	return s.enabled
}

// Predict returns next-round advice for a newest-first history. Histories shorter than
// models.MinPredictionHistory get the default prediction. On failure the error prediction is
// returned together with the error.
func (s *PredictionService) Predict(ctx context.Context, readings []models.Reading) (models.Prediction, error) {
	if len(readings) < models.MinPredictionHistory {
		metrics.PredictionRequestsTotal.WithLabelValues("default").Inc()
		return models.DefaultPrediction(), nil
	}

	if !s.enabled {
		metrics.GeminiErrorsTotal.WithLabelValues("disabled").Inc()
		return models.ErrorPrediction(), ErrPredictionDisabled
	}

	key := estimator.HistoryString(readings)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			metrics.PredictionRequestsTotal.WithLabelValues("cache").Inc()
			debugLog("Prediction cache hit (history=%d)", len(readings))
			return cached, nil
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			metrics.GeminiErrorsTotal.WithLabelValues("rate_limit").Inc()
			return models.ErrorPrediction(), fmt.Errorf("rate limiter: %w", err)
		}
	}

	metrics.PredictionRequestsTotal.WithLabelValues("api").Inc()
	pred, err := s.callGemini(ctx, BuildPredictionPrompt(readings))
	if err != nil {
		infoLog("Error fetching prediction from Gemini API: %v", err)
		return models.ErrorPrediction(), err
	}

	if s.cache != nil {
		s.cache.Add(key, pred)
	}
	return pred, nil
}

// BuildPredictionPrompt renders the analysis prompt for a newest-first history
func BuildPredictionPrompt(readings []models.Reading) string {
	sum := estimator.Summarize(readings)
	return fmt.Sprintf(predictionPrompt,
		sum.Total,
		sum.Counts[models.CategoryLow], sum.Percentages[models.CategoryLow],
		sum.Counts[models.CategoryMedium], sum.Percentages[models.CategoryMedium],
		sum.Counts[models.CategoryHigh], sum.Percentages[models.CategoryHigh],
		sum.RecentTrend,
		sum.Streak,
		sum.Average,
		sum.Highest,
		estimator.HistoryString(readings),
	)
}

func (s *PredictionService) callGemini(ctx context.Context, prompt string) (models.Prediction, error) {
	startTime := time.Now()

	req := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: predictionSystemInstruction}},
		},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			ResponseMimeType:   "application/json",
			ResponseJSONSchema: predictionSchema,
			Temperature:        0.4,
			MaxOutputTokens:    1024,
		},
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return models.Prediction{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", s.baseURL, s.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqJSON))
	if err != nil {
		return models.Prediction{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", s.apiKey)

	debugLog("Gemini request: model=%s, prompt_len=%d", s.model, len(prompt))

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("network").Inc()
		return models.Prediction{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	latency := time.Since(startTime)
	metrics.GeminiAPILatency.Observe(latency.Seconds())

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGeminiBodyBytes))
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("read").Inc()
		return models.Prediction{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.GeminiErrorsTotal.WithLabelValues("api").Inc()
		debugLog("Gemini API error: status=%d body=%s", resp.StatusCode, string(body))
		return models.Prediction{}, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var apiResp geminiAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("parse").Inc()
		return models.Prediction{}, fmt.Errorf("failed to parse API response: %w", err)
	}

	if apiResp.Error != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("api").Inc()
		return models.Prediction{}, fmt.Errorf("API error %d: %s", apiResp.Error.Code, apiResp.Error.Message)
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		metrics.GeminiErrorsTotal.WithLabelValues("empty").Inc()
		return models.Prediction{}, fmt.Errorf("received empty response from the API")
	}

	pred, err := ParsePrediction(apiResp.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("schema").Inc()
		return models.Prediction{}, err
	}

	metrics.GeminiRequestsTotal.Inc()
	infoLog("Gemini prediction: next=%s, probs=%.0f/%.0f/%.0f, target=%.2fx, latency=%v",
		pred.NextRoundPrediction,
		pred.Probabilities.Low, pred.Probabilities.Medium, pred.Probabilities.High,
		pred.CashOutTarget,
		latency)

	return pred, nil
}

// ParsePrediction decodes a model response, tolerating surrounding whitespace and a
// markdown code fence around the JSON payload.
func ParsePrediction(text string) (models.Prediction, error) {
	cleaned := stripCodeFence(text)
	if cleaned == "" {
		return models.Prediction{}, fmt.Errorf("received empty response from the API")
	}

	var pred models.Prediction
	if err := json.Unmarshal([]byte(cleaned), &pred); err != nil {
		debugLog("Gemini response parse error: %v, response: %s", err, text)
		return models.Prediction{}, fmt.Errorf("failed to parse prediction: %w", err)
	}
	if pred.PatternAnalysis == "" && pred.NextRoundPrediction == "" && pred.InvestmentAdvice == "" {
		return models.Prediction{}, fmt.Errorf("prediction has no content")
	}
	return pred, nil
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimPrefix(s, "JSON")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
