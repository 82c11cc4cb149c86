// Package content provides the devserver's campaign fixture store: a
// JSON document standing in for the production campaign database.
package content

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/campaign"
	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/display"
)

// FixtureDocument is the on-disk fixture shape.
type FixtureDocument struct {
	Playlist  *campaign.Playlist         `json:"playlist,omitempty"`
	Campaigns []campaign.Campaign        `json:"campaigns"`
	Events    map[string][]display.Event `json:"events"`
}

// FixtureStore serves campaign snapshots and rotates through each
// campaign's events so repeated fetches see fresh content.
type FixtureStore struct {
	mu      sync.Mutex
	doc     FixtureDocument
	cursors map[string]int
}

// LoadFixtures reads and parses the fixture file.
func LoadFixtures(path string) (*FixtureStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures %s: %w", path, err)
	}

	var doc FixtureDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures %s: %w", path, err)
	}

	return &FixtureStore{
		doc:     doc,
		cursors: make(map[string]int),
	}, nil
}

// NewFixtureStore wraps an in-memory document, used by tests.
func NewFixtureStore(doc FixtureDocument) *FixtureStore {
	return &FixtureStore{
		doc:     doc,
		cursors: make(map[string]int),
	}
}

// Snapshot returns the campaign set, with the playlist only when
// playlist mode is requested.
func (s *FixtureStore) Snapshot(playlistMode bool) campaign.Snapshot {
	snapshot := campaign.Snapshot{Campaigns: s.doc.Campaigns}
	if playlistMode {
		snapshot.Playlist = s.doc.Playlist
	}
	return snapshot
}

// NextEvents returns up to limit events for the campaign, advancing a
// per-campaign rotation cursor so consecutive requests walk the list.
func (s *FixtureStore) NextEvents(campaignID string, limit int) []display.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool := s.doc.Events[campaignID]
	if len(pool) == 0 || limit <= 0 {
		return nil
	}

	events := make([]display.Event, 0, limit)
	for i := 0; i < limit && i < len(pool); i++ {
		events = append(events, pool[s.cursors[campaignID]%len(pool)])
		s.cursors[campaignID]++
	}
	return events
}
