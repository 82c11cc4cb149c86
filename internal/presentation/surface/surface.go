// Package surface renders one notification at a time inside an isolated
// shadow subtree and manages its lifetime. Host integrations receive a
// Handle whose Click, ClickCTA and Close methods deliver the user
// interactions; the onClose and onClick callbacks each fire at most once
// per shown notification, enforced here rather than by caller discipline.
package surface

import (
	"sync"
	"time"

	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/campaign"
	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/display"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
)

// Attacher receives the rendered shadow-tree markup for the host
// container. The default attacher only logs; real hosts inject one.
type Attacher func(markup string)

// Navigator opens a call-to-action URL in a new tab. Injected so tests
// never navigate anywhere.
type Navigator func(url string)

// Surface is the isolated rendering boundary.
type Surface struct {
	logger     *logging.ChanneledLogger
	visibleFor time.Duration
	position   string
	attach     Attacher
	navigate   Navigator
}

// Option customizes a Surface.
type Option func(*Surface)

// WithAttacher installs the host attach hook.
func WithAttacher(attach Attacher) Option {
	return func(s *Surface) { s.attach = attach }
}

// WithNavigator installs the new-tab navigation hook.
func WithNavigator(navigate Navigator) Option {
	return func(s *Surface) { s.navigate = navigate }
}

// New creates a presentation surface.
func New(visibleFor time.Duration, position string, logger *logging.ChanneledLogger, opts ...Option) *Surface {
	s := &Surface{
		logger:     logger,
		visibleFor: visibleFor,
		position:   position,
		attach:     func(string) {},
		navigate:   func(string) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle is one shown notification instance.
type Handle struct {
	mu      sync.Mutex
	clicked bool
	closed  bool

	onClose func()
	onClick func()

	surface      *Surface
	dismissTimer *time.Timer

	eventID    string
	campaignID string
	ctaURL     string
	markup     string
}

// Show renders the event into the shadow subtree, attaches it, and
// schedules automatic dismissal. Dismissal always invokes onClose
// exactly once, whether the timer or the user closes the notification.
func (s *Surface) Show(event *display.NormalizedEvent, c *campaign.Campaign, onClose, onClick func()) *Handle {
	start := time.Now()

	handle := &Handle{
		onClose:    onClose,
		onClick:    onClick,
		surface:    s,
		eventID:    event.ID,
		campaignID: c.ID,
		markup:     renderNotification(event, s.position),
	}
	if event.HasCTA() {
		handle.ctaURL = event.CTAURL
	}

	s.attach(handle.markup)
	handle.dismissTimer = time.AfterFunc(s.visibleFor, handle.autoDismiss)

	if s.logger != nil {
		s.logger.Render().Info("Notification shown",
			"eventId", event.ID,
			"campaignId", c.ID,
			"hasCta", event.HasCTA(),
			"visibleFor", s.visibleFor,
			"duration", time.Since(start),
		)
	}
	return handle
}

// Markup returns the rendered shadow-tree fragment.
func (h *Handle) Markup() string { return h.markup }

// Click delivers a click on the notification body. It reaches onClick
// only when the event carries no explicit call to action.
func (h *Handle) Click() {
	h.mu.Lock()
	if h.closed || h.ctaURL != "" {
		h.mu.Unlock()
		return
	}
	fire := h.consumeClickLocked()
	h.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// ClickCTA delivers a click on the explicit call to action: a new-tab
// navigation plus onClick.
func (h *Handle) ClickCTA() {
	h.mu.Lock()
	if h.closed || h.ctaURL == "" {
		h.mu.Unlock()
		return
	}
	url := h.ctaURL
	fire := h.consumeClickLocked()
	h.mu.Unlock()

	h.surface.navigate(url)
	if fire != nil {
		fire()
	}
}

// Close delivers a click on the close control. It never triggers
// onClick.
func (h *Handle) Close() {
	h.dismiss("user_close")
}

// autoDismiss fires when the visible duration elapses.
func (h *Handle) autoDismiss() {
	h.dismiss("timeout")
}

// consumeClickLocked hands out the onClick callback at most once.
// Callers must hold h.mu.
func (h *Handle) consumeClickLocked() func() {
	if h.clicked {
		return nil
	}
	h.clicked = true
	return h.onClick
}

func (h *Handle) dismiss(reason string) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	fire := h.onClose
	timer := h.dismissTimer
	h.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if h.surface.logger != nil {
		h.surface.logger.Render().Debug("Notification dismissed",
			"eventId", h.eventID,
			"campaignId", h.campaignID,
			"reason", reason,
		)
	}
	if fire != nil {
		fire()
	}
}
