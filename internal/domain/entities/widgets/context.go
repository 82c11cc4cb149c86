// Package widgets defines the explicit per-run widget context. It is
// constructed once at initialization and threaded through every
// component call; the engine keeps no ambient globals.
package widgets

import "errors"

// ErrNoIdentifier marks a fatal local misconfiguration: the embed
// carried none of the three site identifiers.
var ErrNoIdentifier = errors.New("widgets: no widget_id, site_token, or website_id configured")

// EmbedConfig carries the identifiers the host embed supplies. At least
// one must be present; they may be combined.
type EmbedConfig struct {
	WidgetID  string
	SiteToken string
	WebsiteID string
}

// Validate reports the fatal misconfiguration case.
func (e EmbedConfig) Validate() error {
	if e.WidgetID == "" && e.SiteToken == "" && e.WebsiteID == "" {
		return ErrNoIdentifier
	}
	return nil
}

// WidgetContext is the per-run context threaded through the engine:
// embed identity, resolved visitor identity, and the page the widget
// runs on.
type WidgetContext struct {
	Embed     EmbedConfig
	PageURL   string
	VisitorID string
	SessionID string
}

// NewWidgetContext builds a context for a validated embed.
func NewWidgetContext(embed EmbedConfig, pageURL string) *WidgetContext {
	return &WidgetContext{
		Embed:   embed,
		PageURL: pageURL,
	}
}
