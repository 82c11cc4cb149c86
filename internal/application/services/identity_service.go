// Package services provides application-level orchestration services
package services

import (
	"sync"

	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/persistence/storage"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/security"
)

// State tier keys. Every persisted value the engine owns lives under a
// fixed pp: namespaced key.
const (
	visitorIDKey = "pp:visitor_id"
	sessionIDKey = "pp:session_id"
)

// IdentityService derives and persists the durable visitor identifier
// and the ephemeral session identifier. Ids are generated once, lazily,
// and memoized: two calls within one run always agree, even when the
// backing tier refused the write.
type IdentityService struct {
	durable   storage.Tier
	ephemeral storage.Tier
	logger    *logging.ChanneledLogger

	mu        sync.Mutex
	visitorID string
	sessionID string
}

// NewIdentityService creates a new identity service over the two tiers.
func NewIdentityService(durable, ephemeral storage.Tier, logger *logging.ChanneledLogger) *IdentityService {
	return &IdentityService{
		durable:   durable,
		ephemeral: ephemeral,
		logger:    logger,
	}
}

// VisitorID returns the durable visitor identifier, creating it on first
// use.
func (s *IdentityService) VisitorID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.visitorID != "" {
		return s.visitorID
	}
	s.visitorID = s.resolve(s.durable, visitorIDKey, "visitor")
	return s.visitorID
}

// SessionID returns the ephemeral session identifier, creating it on
// first use.
func (s *IdentityService) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessionID != "" {
		return s.sessionID
	}
	s.sessionID = s.resolve(s.ephemeral, sessionIDKey, "session")
	return s.sessionID
}

// resolve reads the tier and generates-then-persists when absent. A
// failed persist is logged and otherwise ignored: the generated id is
// still used for the remainder of the run.
func (s *IdentityService) resolve(tier storage.Tier, key, kind string) string {
	if existing, ok := tier.Get(key); ok && existing != "" {
		return existing
	}

	id := security.GenerateOpaqueID()
	if !tier.Set(key, id) && s.logger != nil {
		s.logger.Storage().Debug("Identifier not persisted, using in-memory value", "kind", kind)
	}
	if s.logger != nil {
		s.logger.System().Info("Identifier created", "kind", kind, "id", id)
	}
	return id
}
