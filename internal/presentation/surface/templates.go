// Notification markup builders. The host container is a fixed-position
// element carrying a declarative shadow root so host-page styles cannot
// leak in or out; the engine touches nothing else in the host DOM.
package surface

import (
	"fmt"
	"html"
	"strings"

	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/display"
)

// positionCSS maps the configured corner onto fixed coordinates.
func positionCSS(position string) string {
	switch position {
	case "bottom-right":
		return "bottom: 20px; right: 20px;"
	case "top-left":
		return "top: 20px; left: 20px;"
	case "top-right":
		return "top: 20px; right: 20px;"
	default:
		return "bottom: 20px; left: 20px;"
	}
}

const notificationStyles = `
:host { all: initial; }
.pp-notification {
  display: flex;
  align-items: center;
  gap: 12px;
  max-width: 360px;
  padding: 14px 16px;
  border-radius: 10px;
  background: #ffffff;
  box-shadow: 0 6px 24px rgba(0, 0, 0, 0.16);
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
  font-size: 14px;
  color: #1a1a2e;
}
.pp-media img { width: 40px; height: 40px; border-radius: 50%; object-fit: cover; }
.pp-emoji { font-size: 28px; line-height: 1; }
.pp-body { flex: 1; min-width: 0; }
.pp-title { font-weight: 600; margin-bottom: 2px; }
.pp-message { color: #4a4a5e; }
.pp-cta {
  display: inline-block;
  margin-top: 6px;
  font-weight: 600;
  color: #2563eb;
  cursor: pointer;
}
.pp-close {
  align-self: flex-start;
  border: none;
  background: none;
  font-size: 16px;
  color: #9a9aae;
  cursor: pointer;
}
`

// renderNotification builds the complete shadow-tree fragment for one
// normalized event.
func renderNotification(event *display.NormalizedEvent, position string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<div id="proofpulse-root" style="position: fixed; %s z-index: 2147483647;">`, positionCSS(position))
	b.WriteString(`<template shadowrootmode="closed">`)
	fmt.Fprintf(&b, `<style>%s</style>`, notificationStyles)
	b.WriteString(`<div class="pp-notification" part="notification">`)

	if media := renderMedia(event); media != "" {
		b.WriteString(media)
	}

	b.WriteString(`<div class="pp-body">`)
	if event.Title != "" {
		fmt.Fprintf(&b, `<div class="pp-title">%s</div>`, html.EscapeString(event.Title))
	}
	fmt.Fprintf(&b, `<div class="pp-message">%s</div>`, html.EscapeString(event.Message))
	if event.HasCTA() {
		fmt.Fprintf(&b, `<span class="pp-cta" data-action="cta">%s</span>`, html.EscapeString(event.CTAText))
	}
	b.WriteString(`</div>`)

	b.WriteString(`<button class="pp-close" data-action="close" aria-label="Close">&times;</button>`)
	b.WriteString(`</div>`)
	b.WriteString(`</template>`)
	b.WriteString(`</div>`)

	return b.String()
}

// renderMedia prefers an image over an emoji; absent both, no media
// column is emitted.
func renderMedia(event *display.NormalizedEvent) string {
	if event.ImageURL != "" {
		return fmt.Sprintf(`<div class="pp-media"><img src="%s" alt=""></div>`, html.EscapeString(event.ImageURL))
	}
	if event.Emoji != "" {
		return fmt.Sprintf(`<div class="pp-emoji">%s</div>`, html.EscapeString(event.Emoji))
	}
	return ""
}
