package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codyseavey/aviator-overlay/backend/internal/metrics"
	"github.com/codyseavey/aviator-overlay/backend/internal/models"
)

var (
	// ErrOCRNotActive is returned when a frame is submitted while the worker is not running
	ErrOCRNotActive = errors.New("OCR worker is not active")
	// ErrFrameDropped is returned when a frame arrives while the previous one is still queued
	ErrFrameDropped = errors.New("OCR worker busy, frame dropped")
)

const defaultFrameTimeout = 10 * time.Second

// FrameRecognizer reads a multiplier from a captured frame
type FrameRecognizer interface {
	Init(ctx context.Context) error
	Recognize(ctx context.Context, frame []byte, area *models.CaptureArea) (float64, bool, error)
}

// FrameSaver stores frames for later inspection
type FrameSaver interface {
	SaveFrame(frame []byte) (string, error)
}

// OCRWorker runs recognition on submitted frames one at a time and forwards the values it reads
type OCRWorker struct {
	recognizer   FrameRecognizer
	onValue      func(float64)
	area         func() *models.CaptureArea
	frameSaver   FrameSaver
	frameTimeout time.Duration

	mu        sync.Mutex
	status    models.OCRStatus
	lastErr   string
	lastValue float64
	frames    chan []byte
	cancel    context.CancelFunc
	done      chan struct{}

	accepted atomic.Int64
	dropped  atomic.Int64
}

// NewOCRWorker creates an idle worker. area and onValue may be nil.
func NewOCRWorker(recognizer FrameRecognizer, onValue func(float64), area func() *models.CaptureArea) *OCRWorker {
	return &OCRWorker{
		recognizer:   recognizer,
		onValue:      onValue,
		area:         area,
		frameTimeout: defaultFrameTimeout,
		status:       models.OCRStatusIdle,
	}
}

// SetFrameSaver enables storage of frames that yield no reading
func (w *OCRWorker) SetFrameSaver(saver FrameSaver) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frameSaver = saver
}

// SetFrameTimeout bounds the time spent recognizing a single frame
func (w *OCRWorker) SetFrameTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frameTimeout = d
}

// Start initializes the recognizer and begins accepting frames. Calling Start on a running
// worker is a no-op.
func (w *OCRWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	switch w.status {
	case models.OCRStatusActive, models.OCRStatusInitializing, models.OCRStatusStopping:
		w.mu.Unlock()
		return nil
	}
	prevCancel, prevDone := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.lastErr = ""
	w.setStatusLocked(models.OCRStatusInitializing)
	w.mu.Unlock()

	// A worker restarted after an error may still have its old loop winding down
	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	if err := w.recognizer.Init(ctx); err != nil {
		w.fail(fmt.Sprintf("initialization failed: %v", err))
		return fmt.Errorf("failed to initialize OCR: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status != models.OCRStatusInitializing {
		// Stopped or failed while initializing
		cancel()
		return nil
	}

	frames := make(chan []byte, 1)
	done := make(chan struct{})
	w.frames = frames
	w.cancel = cancel
	w.done = done
	w.setStatusLocked(models.OCRStatusActive)

	go w.run(loopCtx, frames, done)
	return nil
}

// Stop halts the worker and waits for the frame in progress to finish
func (w *OCRWorker) Stop() {
	w.mu.Lock()
	if w.cancel == nil {
		if w.status != models.OCRStatusIdle {
			w.setStatusLocked(models.OCRStatusIdle)
		}
		w.mu.Unlock()
		return
	}
	cancel, done := w.cancel, w.done
	w.cancel, w.done, w.frames = nil, nil, nil
	w.setStatusLocked(models.OCRStatusStopping)
	w.mu.Unlock()

	cancel()
	<-done

	w.mu.Lock()
	if w.status == models.OCRStatusStopping {
		w.setStatusLocked(models.OCRStatusIdle)
	}
	w.mu.Unlock()
}

// ReportCaptureError records a capture failure reported by the overlay and stops recognition
func (w *OCRWorker) ReportCaptureError(message string) {
	if message == "" {
		message = "capture failed"
	}
	w.fail(message)

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.frames = nil
	w.mu.Unlock()
}

// Submit queues a frame for recognition. Frames arriving while another frame is still queued
// are dropped.
func (w *OCRWorker) Submit(frame []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.status != models.OCRStatusActive || w.frames == nil {
		return ErrOCRNotActive
	}

	select {
	case w.frames <- frame:
		w.accepted.Add(1)
		return nil
	default:
		w.dropped.Add(1)
		metrics.OCRFramesTotal.WithLabelValues("dropped").Inc()
		return ErrFrameDropped
	}
}

// Status returns the current worker state
func (w *OCRWorker) Status() models.OCRStatusResponse {
	w.mu.Lock()
	defer w.mu.Unlock()

	return models.OCRStatusResponse{
		Status:         w.status,
		Error:          w.lastErr,
		FramesAccepted: w.accepted.Load(),
		FramesDropped:  w.dropped.Load(),
		LastValue:      w.lastValue,
	}
}

func (w *OCRWorker) run(ctx context.Context, frames <-chan []byte, done chan<- struct{}) {
	defer close(done)
	log.Println("OCR worker started")

	for {
		select {
		case <-ctx.Done():
			log.Println("OCR worker stopping...")
			return
		case frame := <-frames:
			if err := w.process(ctx, frame); err != nil {
				if ctx.Err() != nil {
					return
				}
				w.fail(fmt.Sprintf("recognition failed: %v", err))
				return
			}
		}
	}
}

// process recognizes one frame. Undecodable frames are counted and skipped; other errors are returned.
func (w *OCRWorker) process(ctx context.Context, frame []byte) error {
	w.mu.Lock()
	timeout := w.frameTimeout
	saver := w.frameSaver
	w.mu.Unlock()

	var area *models.CaptureArea
	if w.area != nil {
		area = w.area()
	}

	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	value, ok, err := w.recognizer.Recognize(fctx, frame, area)
	switch {
	case errors.Is(err, ErrInvalidFrame):
		metrics.OCRFramesTotal.WithLabelValues("rejected").Inc()
		debugLog("OCR worker: skipping frame: %v", err)
		return nil
	case err != nil:
		metrics.OCRFramesTotal.WithLabelValues("error").Inc()
		w.saveFrame(saver, frame)
		return err
	case !ok:
		metrics.OCRFramesTotal.WithLabelValues("empty").Inc()
		w.saveFrame(saver, frame)
		return nil
	}

	metrics.OCRFramesTotal.WithLabelValues("recognized").Inc()
	w.mu.Lock()
	w.lastValue = value
	w.mu.Unlock()

	debugLog("OCR worker: recognized %.2fx", value)
	if w.onValue != nil {
		w.onValue(value)
	}
	return nil
}

func (w *OCRWorker) saveFrame(saver FrameSaver, frame []byte) {
	if saver == nil {
		return
	}
	if name, err := saver.SaveFrame(frame); err != nil {
		log.Printf("OCR worker: failed to save debug frame: %v", err)
	} else {
		debugLog("OCR worker: saved debug frame %s", name)
	}
}

func (w *OCRWorker) fail(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastErr = message
	w.setStatusLocked(models.OCRStatusError)
	log.Printf("OCR worker error: %s", message)
}

func (w *OCRWorker) setStatusLocked(status models.OCRStatus) {
	if w.status == status {
		return
	}
	debugLog("OCR worker: %s -> %s", w.status, status)
	w.status = status
	metrics.OCRStatusTransitions.WithLabelValues(string(status)).Inc()
}
