package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/campaign"
	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/display"
	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/widgets"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/backend"
	"github.com/ProofPulse/proofpulse-go/internal/presentation/surface"
)

// stubFetcher serves a fixed queue of events and remembers how often it
// was asked.
type stubFetcher struct {
	mu     sync.Mutex
	events []*display.Event
	err    error
	calls  int
}

func (f *stubFetcher) FetchNextEvent(_ context.Context, _ string) (*display.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.events) == 0 {
		return nil, nil
	}
	next := f.events[0]
	f.events = f.events[1:]
	return next, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// countingAttacher counts surface attachments. Ticks in these tests run
// synchronously, so a plain counter under a mutex is enough.
type countingAttacher struct {
	mu    sync.Mutex
	count int
}

func (a *countingAttacher) attach(string) {
	a.mu.Lock()
	a.count++
	a.mu.Unlock()
}

func (a *countingAttacher) attachCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

func testTelemetry(baseURL string) *TelemetryService {
	client := backend.NewClient(baseURL, widgets.EmbedConfig{WidgetID: "w1"}, time.Second, nil)
	wctx := &widgets.WidgetContext{VisitorID: "v1", SessionID: "s1", PageURL: "https://example.com"}
	return NewTelemetryService(client, wctx, nil)
}

func displayEvent(id string) *display.Event {
	return &display.Event{ID: id, MessageTemplate: "Someone just signed up"}
}

type schedulerFixture struct {
	scheduler *SchedulerService
	ledger    *FrequencyService
	fetcher   *stubFetcher
	attacher  *countingAttacher
}

func newTestScheduler(snapshot *campaign.Snapshot, fetcher *stubFetcher, telemetryURL string) *schedulerFixture {
	ledger, _, _ := newTestLedger()
	attacher := &countingAttacher{}
	renderSurface := surface.New(time.Minute, "bottom-left", nil, surface.WithAttacher(attacher.attach))
	orchestrator := NewOrchestratorService(snapshot, ledger, nil)

	scheduler := NewSchedulerService(
		orchestrator, ledger, testTelemetry(telemetryURL), renderSurface, fetcher,
		time.Hour, time.Hour, nil,
	)
	return &schedulerFixture{scheduler: scheduler, ledger: ledger, fetcher: fetcher, attacher: attacher}
}

func TestTick_ShowsEventAndCommitsLedger(t *testing.T) {
	tracked := make(chan backend.TrackPayload, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload backend.TrackPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			tracked <- payload
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	snapshot := &campaign.Snapshot{Campaigns: []campaign.Campaign{activeCampaign("A", 1)}}
	fx := newTestScheduler(snapshot, &stubFetcher{events: []*display.Event{displayEvent("e1")}}, server.URL)

	fx.scheduler.Tick(context.Background())

	if got := fx.attacher.attachCount(); got != 1 {
		t.Fatalf("attach count = %d, want 1", got)
	}
	if got := fx.scheduler.ShownCount(); got != 1 {
		t.Errorf("ShownCount() = %d, want 1", got)
	}
	if got := fx.ledger.SessionViews("A"); got != 1 {
		t.Errorf("SessionViews(A) = %d, want 1", got)
	}
	if got := fx.ledger.VisitorViews("A"); got != 1 {
		t.Errorf("VisitorViews(A) = %d, want 1", got)
	}

	select {
	case payload := <-tracked:
		if payload.Action != ActionView {
			t.Errorf("tracked action = %q, want %q", payload.Action, ActionView)
		}
		if payload.EventID != "e1" || payload.CampaignID != "A" {
			t.Errorf("tracked payload = %+v, want event e1 campaign A", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("impression was never tracked")
	}
}

func TestTick_DeduplicatesDisplayedEvents(t *testing.T) {
	snapshot := &campaign.Snapshot{Campaigns: []campaign.Campaign{activeCampaign("A", 1)}}
	fetcher := &stubFetcher{events: []*display.Event{displayEvent("e1"), displayEvent("e1")}}
	fx := newTestScheduler(snapshot, fetcher, "http://127.0.0.1:0")

	fx.scheduler.Tick(context.Background())
	fx.scheduler.Tick(context.Background())

	if got := fx.attacher.attachCount(); got != 1 {
		t.Errorf("attach count = %d, want 1 (same event id shows once per run)", got)
	}
	if got := fx.scheduler.ShownCount(); got != 1 {
		t.Errorf("ShownCount() = %d, want 1", got)
	}
	if got := fx.ledger.SessionViews("A"); got != 1 {
		t.Errorf("SessionViews(A) = %d, want 1 (dedup happens before the ledger commit)", got)
	}
}

func TestTick_NothingEligibleSkipsFetch(t *testing.T) {
	fetcher := &stubFetcher{}
	fx := newTestScheduler(&campaign.Snapshot{}, fetcher, "http://127.0.0.1:0")

	fx.scheduler.Tick(context.Background())

	if got := fetcher.callCount(); got != 0 {
		t.Errorf("fetch calls = %d, want 0", got)
	}
	if got := fx.attacher.attachCount(); got != 0 {
		t.Errorf("attach count = %d, want 0", got)
	}
}

func TestTick_FetchFailureSkipsCycle(t *testing.T) {
	snapshot := &campaign.Snapshot{Campaigns: []campaign.Campaign{activeCampaign("A", 1)}}
	fx := newTestScheduler(snapshot, &stubFetcher{err: context.DeadlineExceeded}, "http://127.0.0.1:0")

	fx.scheduler.Tick(context.Background())

	if got := fx.attacher.attachCount(); got != 0 {
		t.Errorf("attach count = %d, want 0", got)
	}
	if got := fx.ledger.SessionViews("A"); got != 0 {
		t.Errorf("SessionViews(A) = %d, want 0 (failed fetch must not burn the cap)", got)
	}
}

func TestTick_EmptyEventQueueIsQuiet(t *testing.T) {
	snapshot := &campaign.Snapshot{Campaigns: []campaign.Campaign{activeCampaign("A", 1)}}
	fetcher := &stubFetcher{}
	fx := newTestScheduler(snapshot, fetcher, "http://127.0.0.1:0")

	fx.scheduler.Tick(context.Background())

	if got := fetcher.callCount(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
	if got := fx.attacher.attachCount(); got != 0 {
		t.Errorf("attach count = %d, want 0", got)
	}
}

func TestScheduler_PauseSuppressesTicks(t *testing.T) {
	snapshot := &campaign.Snapshot{Campaigns: []campaign.Campaign{activeCampaign("A", 1)}}
	fetcher := &stubFetcher{events: []*display.Event{displayEvent("e1")}}
	fx := newTestScheduler(snapshot, fetcher, "http://127.0.0.1:0")

	ctx := context.Background()
	fx.scheduler.Start(ctx)
	defer fx.scheduler.Stop()

	fx.scheduler.Pause()
	if got := fx.scheduler.State(); got != StatePaused {
		t.Fatalf("State() = %v, want paused", got)
	}

	fx.scheduler.Tick(ctx)
	if got := fetcher.callCount(); got != 0 {
		t.Errorf("fetch calls while paused = %d, want 0", got)
	}

	fx.scheduler.Resume()
	fx.scheduler.Tick(ctx)
	if got := fx.attacher.attachCount(); got != 1 {
		t.Errorf("attach count after resume = %d, want 1", got)
	}
}

func TestScheduler_LifecycleGuards(t *testing.T) {
	snapshot := &campaign.Snapshot{Campaigns: []campaign.Campaign{activeCampaign("A", 1)}}
	fx := newTestScheduler(snapshot, &stubFetcher{}, "http://127.0.0.1:0")
	ctx := context.Background()

	// Pause and Resume are no-ops before the loop is armed.
	fx.scheduler.Pause()
	if got := fx.scheduler.State(); got != StateIdle {
		t.Errorf("State() after idle Pause = %v, want idle", got)
	}
	fx.scheduler.Resume()
	if got := fx.scheduler.State(); got != StateIdle {
		t.Errorf("State() after idle Resume = %v, want idle", got)
	}

	fx.scheduler.Start(ctx)
	if got := fx.scheduler.State(); got != StateScheduled {
		t.Fatalf("State() after Start = %v, want scheduled", got)
	}

	// Double-start is ignored.
	fx.scheduler.Start(ctx)
	if got := fx.scheduler.State(); got != StateScheduled {
		t.Errorf("State() after double Start = %v, want scheduled", got)
	}

	fx.scheduler.Stop()
	if got := fx.scheduler.State(); got != StateIdle {
		t.Errorf("State() after Stop = %v, want idle", got)
	}
}

func TestScheduler_ReinitializeSwapsSnapshot(t *testing.T) {
	first := &campaign.Snapshot{Campaigns: []campaign.Campaign{activeCampaign("A", 1)}}
	fetcher := &stubFetcher{events: []*display.Event{displayEvent("e1")}}
	fx := newTestScheduler(first, fetcher, "http://127.0.0.1:0")

	ctx := context.Background()
	fx.scheduler.Start(ctx)

	second := &campaign.Snapshot{Campaigns: []campaign.Campaign{activeCampaign("B", 1)}}
	fx.scheduler.Reinitialize(ctx, second)
	defer fx.scheduler.Stop()

	if got := fx.scheduler.State(); got != StateScheduled {
		t.Fatalf("State() after Reinitialize = %v, want scheduled", got)
	}

	fx.scheduler.Tick(ctx)
	if got := fx.ledger.SessionViews("B"); got != 1 {
		t.Errorf("SessionViews(B) = %d, want 1 (tick must draw from the new snapshot)", got)
	}
	if got := fx.ledger.SessionViews("A"); got != 0 {
		t.Errorf("SessionViews(A) = %d, want 0", got)
	}
}

func TestScheduler_SnapshotReportsLoopState(t *testing.T) {
	snapshot := &campaign.Snapshot{Campaigns: []campaign.Campaign{activeCampaign("A", 1)}}
	fx := newTestScheduler(snapshot, &stubFetcher{events: []*display.Event{displayEvent("e1")}}, "http://127.0.0.1:0")

	fx.scheduler.Tick(context.Background())

	snap := fx.scheduler.Snapshot()
	if snap.State != "idle" {
		t.Errorf("Snapshot().State = %q, want idle", snap.State)
	}
	if snap.Shown != 1 {
		t.Errorf("Snapshot().Shown = %d, want 1", snap.Shown)
	}
}
