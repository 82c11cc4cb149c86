package surface

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/campaign"
	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/display"
)

type callCounter struct {
	mu    sync.Mutex
	count int
}

func (c *callCounter) bump() {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
}

func (c *callCounter) value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func plainEvent() *display.NormalizedEvent {
	return &display.NormalizedEvent{
		ID:      "e1",
		Title:   "New signup",
		Message: "Pat from Berlin just joined",
	}
}

func ctaEvent() *display.NormalizedEvent {
	e := plainEvent()
	e.CTAText = "See plans"
	e.CTAURL = "https://example.com/pricing"
	return e
}

func showEvent(t *testing.T, s *Surface, event *display.NormalizedEvent, onClose, onClick func()) *Handle {
	t.Helper()
	if onClose == nil {
		onClose = func() {}
	}
	if onClick == nil {
		onClick = func() {}
	}
	return s.Show(event, &campaign.Campaign{ID: "A"}, onClose, onClick)
}

func TestShow_RendersShadowMarkup(t *testing.T) {
	var attached string
	s := New(time.Minute, "bottom-right", nil, WithAttacher(func(markup string) { attached = markup }))

	handle := showEvent(t, s, ctaEvent(), nil, nil)
	defer handle.Close()

	if attached == "" {
		t.Fatal("attacher never received markup")
	}
	if attached != handle.Markup() {
		t.Error("attached markup differs from Markup()")
	}

	for _, want := range []string{
		`shadowrootmode="closed"`,
		`bottom: 20px; right: 20px;`,
		`New signup`,
		`Pat from Berlin just joined`,
		`data-action="cta"`,
		`data-action="close"`,
	} {
		if !strings.Contains(attached, want) {
			t.Errorf("markup missing %q", want)
		}
	}
}

func TestShow_EscapesHostContent(t *testing.T) {
	var attached string
	s := New(time.Minute, "bottom-left", nil, WithAttacher(func(markup string) { attached = markup }))

	event := plainEvent()
	event.Message = `<script>alert("x")</script>`
	handle := showEvent(t, s, event, nil, nil)
	defer handle.Close()

	if strings.Contains(attached, "<script>") {
		t.Error("markup contains unescaped script tag")
	}
	if !strings.Contains(attached, "&lt;script&gt;") {
		t.Error("markup missing escaped content")
	}
}

func TestHandle_BodyClickFiresOnce(t *testing.T) {
	s := New(time.Minute, "bottom-left", nil)
	clicks := &callCounter{}

	handle := showEvent(t, s, plainEvent(), nil, clicks.bump)
	defer handle.Close()

	handle.Click()
	handle.Click()

	if got := clicks.value(); got != 1 {
		t.Errorf("onClick fired %d times, want 1", got)
	}
}

func TestHandle_BodyClickIgnoredWithCTA(t *testing.T) {
	s := New(time.Minute, "bottom-left", nil)
	clicks := &callCounter{}

	handle := showEvent(t, s, ctaEvent(), nil, clicks.bump)
	defer handle.Close()

	handle.Click()

	if got := clicks.value(); got != 0 {
		t.Errorf("onClick fired %d times, want 0 (explicit CTA owns the click)", got)
	}
}

func TestHandle_CTAClickNavigatesAndFiresOnce(t *testing.T) {
	var navigated []string
	s := New(time.Minute, "bottom-left", nil, WithNavigator(func(url string) { navigated = append(navigated, url) }))
	clicks := &callCounter{}

	handle := showEvent(t, s, ctaEvent(), nil, clicks.bump)
	defer handle.Close()

	handle.ClickCTA()
	handle.ClickCTA()

	if got := clicks.value(); got != 1 {
		t.Errorf("onClick fired %d times, want 1", got)
	}
	if len(navigated) != 2 || navigated[0] != "https://example.com/pricing" {
		t.Errorf("navigated = %v, want two navigations to the CTA URL", navigated)
	}
}

func TestHandle_CTAClickIgnoredWithoutCTA(t *testing.T) {
	navigations := &callCounter{}
	s := New(time.Minute, "bottom-left", nil, WithNavigator(func(string) { navigations.bump() }))

	handle := showEvent(t, s, plainEvent(), nil, nil)
	defer handle.Close()

	handle.ClickCTA()

	if got := navigations.value(); got != 0 {
		t.Errorf("navigations = %d, want 0", got)
	}
}

func TestHandle_CloseFiresOnCloseOnceAndNeverOnClick(t *testing.T) {
	s := New(time.Minute, "bottom-left", nil)
	closes := &callCounter{}
	clicks := &callCounter{}

	handle := showEvent(t, s, plainEvent(), closes.bump, clicks.bump)

	handle.Close()
	handle.Close()

	if got := closes.value(); got != 1 {
		t.Errorf("onClose fired %d times, want 1", got)
	}
	if got := clicks.value(); got != 0 {
		t.Errorf("onClick fired %d times, want 0", got)
	}

	// A closed notification no longer accepts clicks.
	handle.Click()
	if got := clicks.value(); got != 0 {
		t.Errorf("onClick after close fired %d times, want 0", got)
	}
}

func TestHandle_AutoDismissFiresOnClose(t *testing.T) {
	s := New(20*time.Millisecond, "bottom-left", nil)
	closed := make(chan struct{}, 2)

	handle := showEvent(t, s, plainEvent(), func() { closed <- struct{}{} }, nil)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("auto-dismiss never fired onClose")
	}

	// Closing after the timer already dismissed must not fire again.
	handle.Close()
	select {
	case <-closed:
		t.Error("onClose fired a second time")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRenderNotification_MediaPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		imageURL string
		emoji    string
		want     string
		absent   string
	}{
		{"image wins over emoji", "https://example.com/a.png", "🔥", `class="pp-media"`, `class="pp-emoji"`},
		{"emoji alone", "", "🔥", `class="pp-emoji"`, `class="pp-media"`},
		{"no media column", "", "", `class="pp-body"`, `class="pp-media"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := plainEvent()
			event.ImageURL = tt.imageURL
			event.Emoji = tt.emoji

			markup := renderNotification(event, "bottom-left")
			if !strings.Contains(markup, tt.want) {
				t.Errorf("markup missing %q", tt.want)
			}
			if tt.absent != "" && strings.Contains(markup, tt.absent) {
				t.Errorf("markup unexpectedly contains %q", tt.absent)
			}
		})
	}
}

func TestPositionCSS(t *testing.T) {
	tests := []struct {
		position string
		want     string
	}{
		{"bottom-left", "bottom: 20px; left: 20px;"},
		{"bottom-right", "bottom: 20px; right: 20px;"},
		{"top-left", "top: 20px; left: 20px;"},
		{"top-right", "top: 20px; right: 20px;"},
		{"sideways", "bottom: 20px; left: 20px;"},
	}

	for _, tt := range tests {
		if got := positionCSS(tt.position); got != tt.want {
			t.Errorf("positionCSS(%q) = %q, want %q", tt.position, got, tt.want)
		}
	}
}
