// Package campaign defines the campaign and playlist entities the engine
// consumes. Both are owned by the backend; the engine treats them as
// read-only snapshots refreshed once per run.
package campaign

// Campaign statuses as delivered by the read endpoint.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Sequence modes accepted in playlist rules.
const (
	ModePriority   = "priority"
	ModeSequential = "sequential"
	ModeRandom     = "random"
)

// FrequencyCap bounds how often one campaign may be shown.
type FrequencyCap struct {
	PerUser         int `json:"per_user"`
	PerSession      int `json:"per_session"`
	CooldownSeconds int `json:"cooldown_seconds"`
}

// Campaign is one configured social-proof campaign.
type Campaign struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Status       string       `json:"status"`
	Priority     int          `json:"priority"`
	FrequencyCap FrequencyCap `json:"frequency_cap"`
}

// IsActive reports whether the campaign may ever be shown.
func (c *Campaign) IsActive() bool {
	return c.Status == StatusActive
}

// SequenceRules constrain how campaigns rotate.
type SequenceRules struct {
	SequenceMode       string `json:"sequence_mode"`
	MaxPerSession      int    `json:"max_per_session"`
	CooldownSeconds    int    `json:"cooldown_seconds"`
	ConflictResolution string `json:"conflict_resolution"`
}

// Playlist is an optional ordering/rules document for a site's campaigns.
type Playlist struct {
	Name          string         `json:"name"`
	CampaignOrder []string       `json:"campaign_order"`
	Rules         *SequenceRules `json:"rules"`
}

// Snapshot is the read endpoint's response: the eligible campaign set and
// an optional playlist.
type Snapshot struct {
	Playlist  *Playlist  `json:"playlist,omitempty"`
	Campaigns []Campaign `json:"campaigns"`
}

// DefaultRules is the fallback used when a playlist is absent or carries
// malformed rules. Falling back is a design default, not an error path.
func DefaultRules() SequenceRules {
	return SequenceRules{
		SequenceMode:       ModePriority,
		MaxPerSession:      10,
		CooldownSeconds:    300,
		ConflictResolution: ModePriority,
	}
}

// ResolveRules returns the playlist's rules when they are well formed and
// the defaults otherwise.
func ResolveRules(playlist *Playlist) SequenceRules {
	if playlist == nil || playlist.Rules == nil {
		return DefaultRules()
	}
	switch playlist.Rules.SequenceMode {
	case ModePriority, ModeSequential, ModeRandom:
		return *playlist.Rules
	default:
		return DefaultRules()
	}
}
