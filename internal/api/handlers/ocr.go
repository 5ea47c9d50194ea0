package handlers

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/aviator-overlay/backend/internal/i18n"
	"github.com/codyseavey/aviator-overlay/backend/internal/models"
	"github.com/codyseavey/aviator-overlay/backend/internal/services"
)

const maxFrameBytes = 10 << 20

type OCRHandler struct {
	worker *services.OCRWorker
}

func NewOCRHandler(worker *services.OCRWorker) *OCRHandler {
	return &OCRHandler{
		worker: worker,
	}
}

type ocrStatusResponse struct {
	models.OCRStatusResponse
	Label string `json:"label"`
}

func (h *OCRHandler) statusResponse(c *gin.Context) ocrStatusResponse {
	st := h.worker.Status()
	return ocrStatusResponse{
		OCRStatusResponse: st,
		Label:             i18n.T(requestLanguage(c), i18n.OCRStatusKey(st.Status)),
	}
}

// GetStatus returns the OCR worker state
func (h *OCRHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.statusResponse(c))
}

// Start initializes OCR and begins accepting frames
func (h *OCRHandler) Start(c *gin.Context) {
	if err := h.worker.Start(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":  err.Error(),
			"status": h.statusResponse(c),
		})
		return
	}
	c.JSON(http.StatusOK, h.statusResponse(c))
}

// Stop halts OCR
func (h *OCRHandler) Stop(c *gin.Context) {
	h.worker.Stop()
	c.JSON(http.StatusOK, h.statusResponse(c))
}

// SubmitFrame queues a captured frame for recognition. The frame may be sent as a multipart
// "frame" file, a JSON body with a base64 "image" field, or the raw image bytes.
func (h *OCRHandler) SubmitFrame(c *gin.Context) {
	frame, err := readFrame(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.worker.Submit(frame)
	switch {
	case errors.Is(err, services.ErrOCRNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "status": h.statusResponse(c)})
	case errors.Is(err, services.ErrFrameDropped):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusAccepted, h.statusResponse(c))
	}
}

// ReportError records a capture failure from the overlay and stops OCR
func (h *OCRHandler) ReportError(c *gin.Context) {
	var req models.CaptureErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	msg := req.Message
	if msg == "" {
		msg = i18n.T(i18n.English, "captureFailed")
	}
	h.worker.ReportCaptureError(msg)
	c.JSON(http.StatusOK, h.statusResponse(c))
}

func readFrame(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFrameBytes)

	contentType := c.ContentType()
	switch {
	case strings.HasPrefix(contentType, "multipart/"):
		file, err := c.FormFile("frame")
		if err != nil {
			return nil, errors.New("no frame provided")
		}
		src, err := file.Open()
		if err != nil {
			return nil, errors.New("failed to open uploaded frame")
		}
		defer src.Close()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(src); err != nil {
			return nil, errors.New("failed to read uploaded frame")
		}
		return nonEmpty(buf.Bytes())

	case contentType == "application/json":
		var req struct {
			Image string `json:"image"` // Base64 encoded frame
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, errors.New("invalid request body")
		}
		data := req.Image
		if i := strings.Index(data, ","); i >= 0 && strings.HasPrefix(data, "data:") {
			data = data[i+1:]
		}
		frame, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, errors.New("invalid base64 frame data")
		}
		return nonEmpty(frame)

	default:
		frame, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, errors.New("failed to read frame")
		}
		return nonEmpty(frame)
	}
}

func nonEmpty(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, errors.New("no frame provided")
	}
	return frame, nil
}
