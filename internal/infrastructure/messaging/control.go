// Package messaging provides the live control channel: the devserver
// broadcasts control frames and the engine maps them onto scheduler
// transitions. Loss of the socket is never fatal; the engine simply
// continues without live control.
package messaging

import (
	"encoding/json"
	"time"

	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
	"github.com/gorilla/websocket"
)

// Control actions carried on the wire.
const (
	ActionPause   = "pause"
	ActionResume  = "resume"
	ActionRefresh = "refresh"
)

// ControlFrame is one message on the control channel.
type ControlFrame struct {
	Action string `json:"action"`
}

// ControlHandler receives decoded control frames on the subscriber's
// read goroutine.
type ControlHandler func(frame ControlFrame)

// ControlSubscriber is the engine side of the channel.
type ControlSubscriber struct {
	url     string
	logger  *logging.ChanneledLogger
	handler ControlHandler
	conn    *websocket.Conn
}

// NewControlSubscriber creates a subscriber for the given ws URL.
func NewControlSubscriber(url string, handler ControlHandler, logger *logging.ChanneledLogger) *ControlSubscriber {
	return &ControlSubscriber{
		url:     url,
		logger:  logger,
		handler: handler,
	}
}

// Subscribe dials the control endpoint and starts the read loop. A
// failed dial is logged and swallowed; the caller keeps running.
func (s *ControlSubscriber) Subscribe() {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(s.url, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.Network().Info("Control channel unavailable, continuing without live control",
				"url", s.url,
				"error", err.Error(),
			)
		}
		return
	}
	s.conn = conn

	if s.logger != nil {
		s.logger.Network().Info("Control channel connected", "url", s.url)
	}
	go s.readLoop()
}

// Close tears down the socket if one is open.
func (s *ControlSubscriber) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

func (s *ControlSubscriber) readLoop() {
	defer s.conn.Close()
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if s.logger != nil {
				s.logger.Network().Info("Control channel closed", "error", err.Error())
			}
			return
		}

		var frame ControlFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			if s.logger != nil {
				s.logger.Network().Debug("Malformed control frame ignored", "error", err.Error())
			}
			continue
		}
		s.handler(frame)
	}
}
