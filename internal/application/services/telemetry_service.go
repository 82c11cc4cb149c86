package services

import (
	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/display"
	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/widgets"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/backend"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
)

// Tracking actions carried on the wire.
const (
	ActionView  = "view"
	ActionClick = "click"
)

// TelemetryService emits best-effort view and click events. Emission is
// dispatched and forgotten: it never blocks the scheduler or the
// presentation surface, and failures are logged, never raised.
type TelemetryService struct {
	client *backend.Client
	wctx   *widgets.WidgetContext
	logger *logging.ChanneledLogger
}

// NewTelemetryService creates a new telemetry sink.
func NewTelemetryService(client *backend.Client, wctx *widgets.WidgetContext, logger *logging.ChanneledLogger) *TelemetryService {
	return &TelemetryService{
		client: client,
		wctx:   wctx,
		logger: logger,
	}
}

// TrackImpression reports that an event was shown.
func (s *TelemetryService) TrackImpression(event *display.NormalizedEvent, campaignID string) {
	s.dispatch(event.ID, campaignID, ActionView)
}

// TrackClick reports user interaction with a shown event.
func (s *TelemetryService) TrackClick(event *display.NormalizedEvent, campaignID string) {
	s.dispatch(event.ID, campaignID, ActionClick)
}

func (s *TelemetryService) dispatch(eventID, campaignID, action string) {
	payload := backend.TrackPayload{
		EventID:    eventID,
		CampaignID: campaignID,
		Action:     action,
		VisitorID:  s.wctx.VisitorID,
		SessionID:  s.wctx.SessionID,
		PageURL:    s.wctx.PageURL,
	}

	go func() {
		if err := s.client.Track(payload); err != nil {
			if s.logger != nil {
				s.logger.Telemetry().Debug("Tracking event dropped",
					"action", action,
					"campaignId", campaignID,
					"error", err.Error(),
				)
			}
			return
		}
		if s.logger != nil {
			s.logger.Telemetry().Debug("Tracking event sent", "action", action, "campaignId", campaignID)
		}
	}()
}
