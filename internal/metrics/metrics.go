// Package metrics provides Prometheus metrics for the overlay backend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aviator_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aviator_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// History Metrics
	ReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aviator_readings_total",
			Help: "Readings offered to the history by source and outcome",
		},
		[]string{"source", "result"}, // result: "added", "duplicate", "invalid"
	)

	ReadingsByCategory = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aviator_readings_by_category_total",
			Help: "Accepted readings by category",
		},
		[]string{"category"},
	)

	HistoryLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aviator_history_length",
			Help: "Current number of readings in the history",
		},
	)

	HistoryClearsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aviator_history_clears_total",
			Help: "Number of explicit history clears",
		},
	)

	// Prediction Metrics
	PredictionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aviator_prediction_requests_total",
			Help: "Prediction requests by source",
		},
		[]string{"source"}, // "api", "cache", "default"
	)

	PredictionsDiscardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aviator_predictions_discarded_total",
			Help: "Prediction responses dropped because a newer history state was already applied",
		},
	)

	PredictionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aviator_predictions_in_flight",
			Help: "Prediction calls currently awaiting a response",
		},
	)

	// Gemini API Metrics
	GeminiRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aviator_gemini_requests_total",
			Help: "Total successful Gemini API prediction requests",
		},
	)

	GeminiAPILatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aviator_gemini_api_latency_seconds",
			Help:    "Gemini API call latency",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	GeminiErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aviator_gemini_errors_total",
			Help: "Gemini API errors by type",
		},
		[]string{"type"}, // "disabled", "rate_limit", "network", "read", "api", "parse", "schema", "empty"
	)

	ConfidenceScoreHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aviator_confidence_score",
			Help:    "Blended confidence score of applied predictions",
			Buckets: []float64{0.1, 0.2, 0.3, 0.45, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	// OCR Metrics
	OCRFramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aviator_ocr_frames_total",
			Help: "OCR frames by outcome",
		},
		[]string{"result"}, // "recognized", "empty", "failed", "dropped", "rejected"
	)

	OCRProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aviator_ocr_processing_duration_seconds",
			Help:    "Time taken to recognize a frame",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	OCRStatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aviator_ocr_status_transitions_total",
			Help: "OCR worker status transitions by target status",
		},
		[]string{"status"},
	)

	// Round Log Metrics
	RoundLogWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aviator_round_log_writes_total",
			Help: "Round log writes by result",
		},
		[]string{"result"}, // "success", "failed"
	)

	RoundLogPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aviator_round_log_pruned_total",
			Help: "Round log rows deleted by retention",
		},
	)
)
