package storage

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/persistence/database"
)

// DurableTier persists state in the widget_state table and mirrors every
// write in memory. When the database is unavailable (missing, locked,
// quota) reads fall back to the mirror and writes are memory-only for
// that call; the engine never sees the failure.
//
// Readable database wins over the mirror so another engine instance
// writing the same file is last-writer-wins, matching the shared-storage
// model the caps are allowed to tolerate.
type DurableTier struct {
	db     *database.DB
	logger *logging.ChanneledLogger
	mu     sync.RWMutex
	mirror map[string]string
}

// NewDurableTier wraps a state database connection. A nil db is allowed
// and yields a memory-only tier, used when opening the state file failed
// at startup.
func NewDurableTier(db *database.DB, logger *logging.ChanneledLogger) *DurableTier {
	return &DurableTier{
		db:     db,
		logger: logger,
		mirror: make(map[string]string),
	}
}

func (t *DurableTier) Get(key string) (string, bool) {
	if t.db != nil {
		start := time.Now()
		var value string
		err := t.db.QueryRow(`SELECT value FROM widget_state WHERE key = ?`, key).Scan(&value)
		if err == nil {
			if t.logger != nil {
				t.logger.Storage().Debug("Durable read", "key", key, "hit", true, "duration", time.Since(start))
			}
			return value, true
		}
		if !errors.Is(err, sql.ErrNoRows) {
			if t.logger != nil {
				t.logger.Storage().Debug("Durable read failed, falling back to mirror", "key", key, "error", err.Error())
			}
			t.mu.RLock()
			defer t.mu.RUnlock()
			value, exists := t.mirror[key]
			return value, exists
		}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	value, exists := t.mirror[key]
	return value, exists
}

func (t *DurableTier) Set(key, value string) bool {
	t.mu.Lock()
	t.mirror[key] = value
	t.mu.Unlock()

	if t.db == nil {
		return false
	}

	start := time.Now()
	_, err := t.db.Exec(
		`INSERT INTO widget_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		if t.logger != nil {
			t.logger.Storage().Debug("Durable write failed, value kept in memory", "key", key, "error", err.Error())
		}
		return false
	}

	duration := time.Since(start)
	if t.logger != nil {
		t.logger.Storage().Debug("Durable write", "key", key, "duration", duration)
		if duration > database.GetSlowQueryThreshold() {
			t.logger.LogSlowQuery("WIDGET_STATE_UPSERT", duration)
		}
	}
	return true
}
