// Package analytics persists the tracking events the devserver receives.
package analytics

import (
	"fmt"
	"time"

	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/backend"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/persistence/database"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/security"
)

// TrackingRepository writes tracking rows to the devserver database.
type TrackingRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewTrackingRepository creates a repository over an open connection.
func NewTrackingRepository(db *database.DB, logger *logging.ChanneledLogger) *TrackingRepository {
	return &TrackingRepository{db: db, logger: logger}
}

// Insert stores one tracking payload.
func (r *TrackingRepository) Insert(payload backend.TrackPayload) error {
	start := time.Now()
	_, err := r.db.Exec(
		`INSERT INTO tracking_events (id, event_id, campaign_id, action, visitor_id, session_id, page_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		security.GenerateULID(),
		payload.EventID,
		payload.CampaignID,
		payload.Action,
		payload.VisitorID,
		payload.SessionID,
		payload.PageURL,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tracking event: %w", err)
	}

	duration := time.Since(start)
	if r.logger != nil {
		r.logger.Telemetry().Debug("Tracking event stored",
			"action", payload.Action,
			"campaignId", payload.CampaignID,
			"duration", duration,
		)
		if duration > database.GetSlowQueryThreshold() {
			r.logger.LogSlowQuery("TRACKING_EVENT_INSERT", duration)
		}
	}
	return nil
}

// CountByAction returns how many events of one action a campaign has
// accumulated.
func (r *TrackingRepository) CountByAction(campaignID, action string) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM tracking_events WHERE campaign_id = ? AND action = ?`,
		campaignID, action,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tracking events: %w", err)
	}
	return count, nil
}
