package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/campaign"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/persistence/storage"
)

// frequencyRecord is one campaign's counters within one tier. Counters
// only increase; views >= clicks >= 0 always holds.
type frequencyRecord struct {
	Views  int `json:"views"`
	Clicks int `json:"clicks"`
}

// FrequencyService is the ledger enforcing per-campaign caps and
// cooldowns. Session counters live in the ephemeral tier, visitor
// counters and last-shown marks in the durable tier. All operations are
// synchronous and touch only their own campaign's keys.
type FrequencyService struct {
	durable   storage.Tier
	ephemeral storage.Tier
	logger    *logging.ChanneledLogger
	now       func() time.Time
}

// NewFrequencyService creates a new frequency ledger over the two tiers.
func NewFrequencyService(durable, ephemeral storage.Tier, logger *logging.ChanneledLogger) *FrequencyService {
	return &FrequencyService{
		durable:   durable,
		ephemeral: ephemeral,
		logger:    logger,
		now:       time.Now,
	}
}

func frequencyKey(campaignID string) string { return "pp:freq:" + campaignID }
func lastShownKey(campaignID string) string { return "pp:last_shown:" + campaignID }

// CanShow reports whether the campaign is within its caps and cooldown.
// The check order is session cap, then user cap, then cooldown, and the
// first failing check short-circuits. The order is load-bearing for
// compatibility with existing deployments; do not reorder.
func (s *FrequencyService) CanShow(c *campaign.Campaign) bool {
	caps := c.FrequencyCap

	if caps.PerSession > 0 {
		if record := s.readRecord(s.ephemeral, c.ID); record.Views >= caps.PerSession {
			s.logEligibility(c.ID, "session_cap_reached", record.Views)
			return false
		}
	}

	if caps.PerUser > 0 {
		if record := s.readRecord(s.durable, c.ID); record.Views >= caps.PerUser {
			s.logEligibility(c.ID, "user_cap_reached", record.Views)
			return false
		}
	}

	if caps.CooldownSeconds > 0 {
		if lastShown, ok := s.readLastShown(c.ID); ok {
			elapsed := s.now().Sub(lastShown)
			if elapsed < time.Duration(caps.CooldownSeconds)*time.Second {
				s.logEligibility(c.ID, "cooling_down", int(elapsed.Seconds()))
				return false
			}
		}
	}

	return true
}

// RecordView increments both tiers' view counters and persists them
// best-effort; a refused write leaves the count live for the rest of the
// run only.
func (s *FrequencyService) RecordView(campaignID string) {
	s.mutateRecord(s.ephemeral, campaignID, func(r *frequencyRecord) { r.Views++ })
	s.mutateRecord(s.durable, campaignID, func(r *frequencyRecord) { r.Views++ })
}

// RecordClick increments a tier's click counter only where a view record
// already exists for the campaign; a click with no prior view is dropped.
func (s *FrequencyService) RecordClick(campaignID string) {
	for _, tier := range []storage.Tier{s.ephemeral, s.durable} {
		if _, ok := tier.Get(frequencyKey(campaignID)); !ok {
			if s.logger != nil {
				s.logger.Telemetry().Debug("Click without prior view dropped", "campaignId", campaignID)
			}
			continue
		}
		s.mutateRecord(tier, campaignID, func(r *frequencyRecord) {
			if r.Clicks < r.Views {
				r.Clicks++
			}
		})
	}
}

// MarkShown stores now() as the campaign's last-shown mark, durably.
func (s *FrequencyService) MarkShown(campaignID string) {
	mark := strconv.FormatInt(s.now().Unix(), 10)
	if !s.durable.Set(lastShownKey(campaignID), mark) && s.logger != nil {
		s.logger.Storage().Debug("Last-shown mark not persisted", "campaignId", campaignID)
	}
}

// SessionViews returns the ephemeral-tier view count for a campaign.
func (s *FrequencyService) SessionViews(campaignID string) int {
	return s.readRecord(s.ephemeral, campaignID).Views
}

// VisitorViews returns the durable-tier view count for a campaign.
func (s *FrequencyService) VisitorViews(campaignID string) int {
	return s.readRecord(s.durable, campaignID).Views
}

func (s *FrequencyService) readRecord(tier storage.Tier, campaignID string) frequencyRecord {
	var record frequencyRecord
	raw, ok := tier.Get(frequencyKey(campaignID))
	if !ok {
		return record
	}
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		if s.logger != nil {
			s.logger.Storage().Debug("Corrupt frequency record ignored", "campaignId", campaignID, "error", err.Error())
		}
		return frequencyRecord{}
	}
	return record
}

func (s *FrequencyService) mutateRecord(tier storage.Tier, campaignID string, mutate func(*frequencyRecord)) {
	record := s.readRecord(tier, campaignID)
	mutate(&record)

	encoded, err := json.Marshal(record)
	if err != nil {
		return
	}
	if !tier.Set(frequencyKey(campaignID), string(encoded)) && s.logger != nil {
		s.logger.Storage().Debug("Frequency record not persisted", "campaignId", campaignID)
	}
}

func (s *FrequencyService) readLastShown(campaignID string) (time.Time, bool) {
	raw, ok := s.durable.Get(lastShownKey(campaignID))
	if !ok {
		return time.Time{}, false
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}

func (s *FrequencyService) logEligibility(campaignID, reason string, value int) {
	if s.logger == nil {
		return
	}
	s.logger.Scheduler().Debug("Campaign ineligible",
		"campaignId", campaignID,
		"reason", reason,
		"value", fmt.Sprintf("%d", value),
	)
}
