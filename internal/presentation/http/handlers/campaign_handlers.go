// Package handlers implements the devserver's endpoint handlers.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/display"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/persistence/content"
	"github.com/gin-gonic/gin"
)

// CampaignHandlers serves the read endpoints the engine consumes.
type CampaignHandlers struct {
	store *content.FixtureStore
}

// NewCampaignHandlers creates handlers over a fixture store.
func NewCampaignHandlers(store *content.FixtureStore) *CampaignHandlers {
	return &CampaignHandlers{store: store}
}

// GetCampaigns handles GET /api/v1/campaigns.
func (h *CampaignHandlers) GetCampaigns(c *gin.Context) {
	playlistMode := c.Query("playlist_mode") == "true"
	c.JSON(http.StatusOK, h.store.Snapshot(playlistMode))
}

// GetEvents handles GET /api/v1/events.
func (h *CampaignHandlers) GetEvents(c *gin.Context) {
	campaignID := c.Query("campaign_id")
	if campaignID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campaign_id required"})
		return
	}

	limit := 1
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	events := h.store.NextEvents(campaignID, limit)
	if events == nil {
		events = []display.Event{}
	}
	c.JSON(http.StatusOK, display.EventResponse{Events: events})
}
