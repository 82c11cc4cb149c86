// Package display defines the content unit the engine renders. The
// backend's event_data field is duck typed (a JSON object or a JSON
// string containing one); it is resolved exactly once at ingestion into
// a canonical NormalizedEvent so rendering never checks optionality.
package display

import (
	"encoding/json"
)

// Event is the raw display event as delivered by the event endpoint.
type Event struct {
	ID              string          `json:"id"`
	EventData       json.RawMessage `json:"event_data"`
	MessageTemplate string          `json:"message_template"`
}

// EventResponse is the event endpoint's envelope.
type EventResponse struct {
	Events []Event `json:"events"`
}

// eventData is the decoded shape of the event_data union. All fields are
// optional on the wire.
type eventData struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	ImageURL string `json:"image_url"`
	Emoji    string `json:"emoji"`
	CTAText  string `json:"cta_text"`
	CTAURL   string `json:"cta_url"`
}

// NormalizedEvent is the canonical, fully-defaulted content unit handed
// to the presentation surface.
type NormalizedEvent struct {
	ID              string
	Title           string
	Message         string
	ImageURL        string
	Emoji           string
	CTAText         string
	CTAURL          string
	MessageTemplate string
}

// HasCTA reports whether the event carries an explicit call to action.
func (e *NormalizedEvent) HasCTA() bool {
	return e.CTAText != "" && e.CTAURL != ""
}

// Normalize resolves the event_data union and applies defaults for absent
// fields. Malformed payloads degrade to an empty-content event rather
// than failing; a notification with only defaults still renders.
func Normalize(raw *Event) *NormalizedEvent {
	normalized := &NormalizedEvent{
		ID:              raw.ID,
		MessageTemplate: raw.MessageTemplate,
	}

	data := decodeEventData(raw.EventData)
	normalized.Title = data.Title
	normalized.Message = data.Message
	normalized.ImageURL = data.ImageURL
	normalized.Emoji = data.Emoji
	normalized.CTAText = data.CTAText
	normalized.CTAURL = data.CTAURL

	if normalized.Message == "" {
		normalized.Message = normalized.MessageTemplate
	}
	return normalized
}

// decodeEventData accepts either a JSON object or a JSON string holding
// an encoded object.
func decodeEventData(raw json.RawMessage) eventData {
	var data eventData
	if len(raw) == 0 {
		return data
	}

	if err := json.Unmarshal(raw, &data); err == nil {
		return data
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return eventData{}
	}
	if err := json.Unmarshal([]byte(encoded), &data); err != nil {
		return eventData{}
	}
	return data
}
