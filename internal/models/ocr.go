package models

// OCRStatus is the lifecycle state of the OCR worker
type OCRStatus string

const (
	OCRStatusIdle         OCRStatus = "IDLE"
	OCRStatusInitializing OCRStatus = "INITIALIZING..."
	OCRStatusActive       OCRStatus = "ACTIVE"
	OCRStatusStopping     OCRStatus = "STOPPING..."
	OCRStatusError        OCRStatus = "ERROR"
)

// OCRStatusResponse is returned by the OCR endpoints
type OCRStatusResponse struct {
	Status         OCRStatus `json:"status"`
	Error          string    `json:"error,omitempty"`
	FramesAccepted int64     `json:"frames_accepted"`
	FramesDropped  int64     `json:"frames_dropped"`
	LastValue      float64   `json:"last_value,omitempty"`
}

// CaptureErrorRequest reports a capture/permission failure from the overlay
type CaptureErrorRequest struct {
	Message string `json:"message"`
}
