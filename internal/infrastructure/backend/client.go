// Package backend implements the engine's read-side API client: the
// campaign snapshot fetch, the per-tick event fetch, and the
// fire-and-forget tracking post. Every failure here is non-fatal to the
// engine; callers log and treat it as "no data this cycle."
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/campaign"
	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/display"
	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/widgets"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
)

// Client talks to the ProofPulse read and tracking endpoints.
type Client struct {
	baseURL    string
	embed      widgets.EmbedConfig
	httpClient *http.Client
	logger     *logging.ChanneledLogger
}

// NewClient creates a backend client for one embed.
func NewClient(baseURL string, embed widgets.EmbedConfig, timeout time.Duration, logger *logging.ChanneledLogger) *Client {
	return &Client{
		baseURL:    baseURL,
		embed:      embed,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// TrackPayload is the tracking endpoint's request body.
type TrackPayload struct {
	EventID    string `json:"event_id"`
	CampaignID string `json:"campaign_id"`
	Action     string `json:"action"`
	VisitorID  string `json:"visitor_id"`
	SessionID  string `json:"session_id"`
	PageURL    string `json:"page_url"`
}

// identifierValues appends whichever embed identifiers are present.
func (c *Client) identifierValues(values url.Values) {
	if c.embed.WidgetID != "" {
		values.Set("widget_id", c.embed.WidgetID)
	}
	if c.embed.SiteToken != "" {
		values.Set("site_token", c.embed.SiteToken)
	}
	if c.embed.WebsiteID != "" {
		values.Set("website_id", c.embed.WebsiteID)
	}
}

// FetchCampaigns retrieves the campaign set and optional playlist for the
// embed. Any non-2xx response or parse failure yields a nil snapshot and
// an error; the caller aborts initialization cleanly.
func (c *Client) FetchCampaigns(ctx context.Context) (*campaign.Snapshot, error) {
	start := time.Now()

	values := url.Values{}
	values.Set("playlist_mode", "true")
	c.identifierValues(values)

	endpoint := fmt.Sprintf("%s/campaigns?%s", c.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build campaigns request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("campaigns fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("campaigns fetch returned status %d", resp.StatusCode)
	}

	var snapshot campaign.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse campaigns response: %w", err)
	}

	if c.logger != nil {
		c.logger.Network().Info("Campaign snapshot fetched",
			"campaigns", len(snapshot.Campaigns),
			"hasPlaylist", snapshot.Playlist != nil,
			"duration", time.Since(start),
		)
	}
	return &snapshot, nil
}

// FetchNextEvent retrieves at most one display event for the campaign.
// An empty result is a normal "nothing to show" and returns (nil, nil).
func (c *Client) FetchNextEvent(ctx context.Context, campaignID string) (*display.Event, error) {
	start := time.Now()

	values := url.Values{}
	values.Set("campaign_id", campaignID)
	values.Set("limit", "1")
	c.identifierValues(values)

	endpoint := fmt.Sprintf("%s/events?%s", c.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build events request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("event fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("event fetch returned status %d", resp.StatusCode)
	}

	var envelope display.EventResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to parse events response: %w", err)
	}

	if len(envelope.Events) == 0 {
		if c.logger != nil {
			c.logger.Network().Debug("No events available", "campaignId", campaignID, "duration", time.Since(start))
		}
		return nil, nil
	}
	return &envelope.Events[0], nil
}

// Track posts one tracking payload. The response body is drained and
// discarded; correctness never depends on it. Callers dispatch Track on
// its own goroutine so it cannot block the scheduler or the surface.
func (c *Client) Track(payload TrackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode track payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/track", c.baseURL)
	resp, err := c.httpClient.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("track post failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("track post returned status %d", resp.StatusCode)
	}
	return nil
}
