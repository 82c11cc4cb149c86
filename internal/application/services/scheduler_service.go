package services

import (
	"context"
	"sync"
	"time"

	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/campaign"
	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/display"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
	"github.com/ProofPulse/proofpulse-go/internal/presentation/surface"
)

// SchedulerState is the display loop's lifecycle state. Transitions are
// guarded so a reinitialization can never leave two timers alive.
type SchedulerState int

const (
	StateIdle SchedulerState = iota
	StateScheduled
	StateRunning
	StatePaused
)

func (s SchedulerState) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// eventFetcher is the slice of the backend client the scheduler needs.
type eventFetcher interface {
	FetchNextEvent(ctx context.Context, campaignID string) (*display.Event, error)
}

// SchedulerService paces the engine: one quiet initial delay, then a
// fixed interval. Each tick asks the orchestrator for a campaign,
// fetches one not-yet-displayed event, commits the ledger updates, and
// hands off to the presentation surface. An empty tick is a no-op, not
// an error.
type SchedulerService struct {
	orchestrator *OrchestratorService
	ledger       *FrequencyService
	telemetry    *TelemetryService
	surface      *surface.Surface
	fetcher      eventFetcher
	logger       *logging.ChanneledLogger

	initialDelay time.Duration
	interval     time.Duration

	mu         sync.Mutex
	state      SchedulerState
	cancelLoop context.CancelFunc
	displayed  map[string]bool
	shownCount int
}

// NewSchedulerService creates a scheduler in the Idle state. The
// displayed set is engine-run memory: one event shows at most once per
// run and the set resets only with a new engine.
func NewSchedulerService(
	orchestrator *OrchestratorService,
	ledger *FrequencyService,
	telemetry *TelemetryService,
	renderSurface *surface.Surface,
	fetcher eventFetcher,
	initialDelay, interval time.Duration,
	logger *logging.ChanneledLogger,
) *SchedulerService {
	return &SchedulerService{
		orchestrator: orchestrator,
		ledger:       ledger,
		telemetry:    telemetry,
		surface:      renderSurface,
		fetcher:      fetcher,
		logger:       logger,
		initialDelay: initialDelay,
		interval:     interval,
		state:        StateIdle,
		displayed:    make(map[string]bool),
	}
}

// State returns the current lifecycle state.
func (s *SchedulerService) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ShownCount returns how many notifications this run has displayed.
func (s *SchedulerService) ShownCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shownCount
}

// Snapshot captures the loop's observable state for logs and tests.
type Snapshot struct {
	State  string `json:"state"`
	Shown  int    `json:"shown"`
	Cursor int    `json:"cursor"`
}

// Snapshot reports the loop state, shown count, and rotation cursor.
func (s *SchedulerService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:  s.state.String(),
		Shown:  s.shownCount,
		Cursor: s.orchestrator.Cursor(),
	}
}

// Start arms the display loop. Only valid from Idle; any other state is
// a guarded no-op so double-starts cannot stack timers.
func (s *SchedulerService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Scheduler().Debug("Start ignored, loop already armed")
		}
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancelLoop = cancel
	s.state = StateScheduled
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Scheduler().Info("Display loop scheduled",
			"initialDelay", s.initialDelay,
			"interval", s.interval,
		)
	}

	go s.run(loopCtx)
}

// Pause suspends ticking without cancelling the timer. Resuming does not
// replay missed ticks.
func (s *SchedulerService) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateScheduled && s.state != StateRunning {
		return
	}
	s.state = StatePaused
	if s.logger != nil {
		s.logger.Scheduler().Info("Display loop paused")
	}
}

// Resume lifts the pause flag.
func (s *SchedulerService) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return
	}
	s.state = StateRunning
	if s.logger != nil {
		s.logger.Scheduler().Info("Display loop resumed")
	}
}

// Reinitialize swaps in a fresh campaign snapshot and restarts the loop.
// The prior timer is cancelled before the new one is armed: at most one
// timer is alive at any time.
func (s *SchedulerService) Reinitialize(ctx context.Context, snapshot *campaign.Snapshot) {
	s.mu.Lock()
	if s.cancelLoop != nil {
		s.cancelLoop()
		s.cancelLoop = nil
	}
	s.state = StateIdle
	s.orchestrator = NewOrchestratorService(snapshot, s.ledger, s.logger)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Scheduler().Info("Display loop reinitialized", "campaigns", len(snapshot.Campaigns))
	}
	s.Start(ctx)
}

// Stop cancels the loop and returns the scheduler to Idle.
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelLoop != nil {
		s.cancelLoop()
		s.cancelLoop = nil
	}
	s.state = StateIdle
	if s.logger != nil {
		s.logger.Scheduler().Info("Display loop stopped")
	}
}

// run owns the loop's timers: the quiet initial delay, then the fixed
// interval.
func (s *SchedulerService) run(ctx context.Context) {
	initial := time.NewTimer(s.initialDelay)
	defer initial.Stop()

	select {
	case <-ctx.Done():
		return
	case <-initial.C:
	}

	s.mu.Lock()
	if s.state == StateScheduled {
		s.state = StateRunning
	}
	s.mu.Unlock()

	s.Tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one display cycle. Ledger state is read and mutated before
// the surface is invoked, so no later tick can observe an event this one
// already committed to showing.
func (s *SchedulerService) Tick(ctx context.Context) {
	s.mu.Lock()
	if s.state == StatePaused {
		s.mu.Unlock()
		return
	}
	orchestrator := s.orchestrator
	s.mu.Unlock()

	selected := orchestrator.SelectNext()
	if selected == nil {
		return
	}

	raw, err := s.fetcher.FetchNextEvent(ctx, selected.ID)
	if err != nil {
		if s.logger != nil {
			s.logger.Network().Debug("Event fetch failed, skipping cycle",
				"campaignId", selected.ID,
				"error", err.Error(),
			)
		}
		return
	}
	if raw == nil {
		return
	}

	event := display.Normalize(raw)

	s.mu.Lock()
	if s.displayed[event.ID] {
		s.mu.Unlock()
		return
	}
	s.displayed[event.ID] = true
	s.shownCount++
	s.mu.Unlock()

	s.ledger.RecordView(selected.ID)
	s.ledger.MarkShown(selected.ID)

	campaignID := selected.ID
	s.surface.Show(event, selected,
		func() {
			if s.logger != nil {
				s.logger.Scheduler().Debug("Notification closed", "eventId", event.ID)
			}
		},
		func() {
			s.ledger.RecordClick(campaignID)
			s.telemetry.TrackClick(event, campaignID)
		},
	)
	s.telemetry.TrackImpression(event, campaignID)
}
