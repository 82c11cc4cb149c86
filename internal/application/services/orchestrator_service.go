package services

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/campaign"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
)

// OrchestratorService arbitrates among competing campaigns under the
// playlist's sequencing rules. The rotation cursor is orchestrator-local
// and lives only for the engine run.
type OrchestratorService struct {
	ledger    *FrequencyService
	logger    *logging.ChanneledLogger
	campaigns []campaign.Campaign
	playlist  *campaign.Playlist
	rules     campaign.SequenceRules

	mu     sync.Mutex
	cursor int

	randIntn func(n int) int
}

// NewOrchestratorService creates an orchestrator over one campaign
// snapshot. Malformed or missing rules resolve to the defaults.
func NewOrchestratorService(snapshot *campaign.Snapshot, ledger *FrequencyService, logger *logging.ChanneledLogger) *OrchestratorService {
	return &OrchestratorService{
		ledger:    ledger,
		logger:    logger,
		campaigns: snapshot.Campaigns,
		playlist:  snapshot.Playlist,
		rules:     campaign.ResolveRules(snapshot.Playlist),
		randIntn:  rand.Intn,
	}
}

// Rules returns the resolved sequencing rules.
func (s *OrchestratorService) Rules() campaign.SequenceRules {
	return s.rules
}

// Cursor returns the rotation cursor, for state snapshots.
func (s *OrchestratorService) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// SelectNext returns the next campaign to display, or nil when nothing
// is eligible right now. A nil result is an expected steady state, never
// an error.
func (s *OrchestratorService) SelectNext() *campaign.Campaign {
	eligible := s.eligibleCampaigns()
	if len(eligible) == 0 {
		if s.logger != nil {
			s.logger.Scheduler().Debug("No eligible campaigns", "total", len(s.campaigns))
		}
		return nil
	}

	switch s.rules.SequenceMode {
	case campaign.ModeSequential:
		return s.selectSequential(eligible)
	case campaign.ModeRandom:
		return &eligible[s.randIntn(len(eligible))]
	default:
		return selectByPriority(eligible)
	}
}

// eligibleCampaigns filters to active campaigns the ledger will allow.
func (s *OrchestratorService) eligibleCampaigns() []campaign.Campaign {
	eligible := make([]campaign.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		if !c.IsActive() {
			continue
		}
		if !s.ledger.CanShow(&c) {
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible
}

// selectByPriority stable-sorts descending by priority so ties keep the
// snapshot's original relative order, and returns the head.
func selectByPriority(eligible []campaign.Campaign) *campaign.Campaign {
	ranked := make([]campaign.Campaign, len(eligible))
	copy(ranked, eligible)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})
	return &ranked[0]
}

// selectSequential rotates through the playlist order projected onto the
// eligible set, falling back to the eligible order when the playlist
// names nothing. The cursor advances on every call regardless of the
// branch taken.
func (s *OrchestratorService) selectSequential(eligible []campaign.Campaign) *campaign.Campaign {
	s.mu.Lock()
	position := s.cursor
	s.cursor++
	s.mu.Unlock()

	ordered := eligible
	if s.playlist != nil && len(s.playlist.CampaignOrder) > 0 {
		projected := projectOrder(s.playlist.CampaignOrder, eligible)
		if len(projected) > 0 {
			ordered = projected
		}
	}

	return &ordered[position%len(ordered)]
}

// projectOrder maps a campaign id ordering onto the eligible set,
// dropping ids that are not present.
func projectOrder(order []string, eligible []campaign.Campaign) []campaign.Campaign {
	byID := make(map[string]campaign.Campaign, len(eligible))
	for _, c := range eligible {
		byID[c.ID] = c
	}

	projected := make([]campaign.Campaign, 0, len(order))
	for _, id := range order {
		if c, exists := byID[id]; exists {
			projected = append(projected, c)
		}
	}
	return projected
}
