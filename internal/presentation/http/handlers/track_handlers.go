package handlers

import (
	"net/http"

	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/backend"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/persistence/analytics"
	"github.com/gin-gonic/gin"
)

// TrackHandlers ingests fire-and-forget tracking posts.
type TrackHandlers struct {
	repository *analytics.TrackingRepository
	logger     *logging.ChanneledLogger
}

// NewTrackHandlers creates handlers over a tracking repository.
func NewTrackHandlers(repository *analytics.TrackingRepository, logger *logging.ChanneledLogger) *TrackHandlers {
	return &TrackHandlers{repository: repository, logger: logger}
}

// PostTrack handles POST /api/v1/track.
func (h *TrackHandlers) PostTrack(c *gin.Context) {
	var payload backend.TrackPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid track payload"})
		return
	}

	if payload.CampaignID == "" || payload.Action == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campaign_id and action required"})
		return
	}

	if err := h.repository.Insert(payload); err != nil {
		if h.logger != nil {
			h.logger.Telemetry().Error("Failed to store tracking event", "error", err.Error())
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store tracking event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
