package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/aviator-overlay/backend/internal/history"
	"github.com/codyseavey/aviator-overlay/backend/internal/i18n"
	"github.com/codyseavey/aviator-overlay/backend/internal/models"
	"github.com/codyseavey/aviator-overlay/backend/internal/services"
)

type SessionHandler struct {
	session *services.Session
}

func NewSessionHandler(session *services.Session) *SessionHandler {
	return &SessionHandler{
		session: session,
	}
}

// SessionLabels are the localized badge texts for the current state
type SessionLabels struct {
	Trend      string `json:"trend"`
	Confidence string `json:"confidence"`
}

// SessionResponse is the session state with localized labels
type SessionResponse struct {
	services.SessionState
	Language i18n.Language `json:"language"`
	Labels   SessionLabels `json:"labels"`
}

func newSessionResponse(state services.SessionState, lang i18n.Language) SessionResponse {
	return SessionResponse{
		SessionState: state,
		Language:     lang,
		Labels: SessionLabels{
			Trend:      i18n.T(lang, i18n.TrendKey(state.Trend)),
			Confidence: i18n.T(lang, i18n.ConfidenceKey(state.Confidence)),
		},
	}
}

// GetSession returns history, trend, confidence and the current prediction
func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, newSessionResponse(h.session.State(), requestLanguage(c)))
}

// GetReadings returns the history, newest first
func (h *SessionHandler) GetReadings(c *gin.Context) {
	readings := h.session.Readings()
	c.JSON(http.StatusOK, gin.H{
		"readings": readings,
		"count":    len(readings),
	})
}

// AddReading records a manually entered multiplier
func (h *SessionHandler) AddReading(c *gin.Context) {
	lang := requestLanguage(c)

	var req models.AddReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil || !history.ValidValue(*req.Value) {
		c.JSON(http.StatusBadRequest, gin.H{"error": i18n.T(lang, "invalidMultiplier")})
		return
	}

	result := h.session.AddReading(*req.Value, models.SourceManual)
	c.JSON(http.StatusOK, gin.H{
		"added":   result.Added,
		"reading": result.Reading,
		"reason":  result.Reason,
		"session": newSessionResponse(h.session.State(), lang),
	})
}

// ClearReadings empties the history and resets the prediction
func (h *SessionHandler) ClearReadings(c *gin.Context) {
	h.session.Clear()
	c.JSON(http.StatusOK, newSessionResponse(h.session.State(), requestLanguage(c)))
}
