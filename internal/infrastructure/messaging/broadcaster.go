package messaging

import (
	"encoding/json"
	"sync"

	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
	"github.com/gorilla/websocket"
)

// ControlClient represents a single connected engine on the devserver's
// control channel.
type ControlClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// ControlBroadcaster manages connected engines and pushes control frames
// to all of them.
type ControlBroadcaster struct {
	clients map[*ControlClient]bool
	mu      sync.RWMutex
	logger  *logging.ChanneledLogger
}

// NewControlBroadcaster creates a broadcaster instance.
func NewControlBroadcaster(logger *logging.ChanneledLogger) *ControlBroadcaster {
	return &ControlBroadcaster{
		clients: make(map[*ControlClient]bool),
		logger:  logger,
	}
}

// Register adds a connected engine and starts its write pump.
func (b *ControlBroadcaster) Register(client *ControlClient) {
	b.mu.Lock()
	b.clients[client] = true
	count := len(b.clients)
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.Network().Info("Control client registered", "clients", count)
	}
	go b.writePump(client)
}

// Unregister removes a client and closes its send channel.
func (b *ControlBroadcaster) Unregister(client *ControlClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.clients[client]; exists {
		delete(b.clients, client)
		close(client.Send)
	}
}

// Broadcast pushes one control frame to every connected engine. Slow
// clients are skipped rather than blocked on.
func (b *ControlBroadcaster) Broadcast(action string) {
	frame, err := json.Marshal(ControlFrame{Action: action})
	if err != nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.Send <- frame:
		default:
		}
	}

	if b.logger != nil {
		b.logger.Network().Info("Control frame broadcast", "action", action, "clients", len(b.clients))
	}
}

// ClientCount reports how many engines are connected.
func (b *ControlBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *ControlBroadcaster) writePump(client *ControlClient) {
	defer func() {
		b.Unregister(client)
		client.Conn.Close()
	}()

	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
