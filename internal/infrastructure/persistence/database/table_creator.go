// Package database provides client-state schema instantiation
package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the engine's state schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

var clientStateTables = []string{
	`CREATE TABLE IF NOT EXISTS widget_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var trackingTables = []string{
	`CREATE TABLE IF NOT EXISTS tracking_events (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		campaign_id TEXT NOT NULL,
		action TEXT NOT NULL,
		visitor_id TEXT,
		session_id TEXT,
		page_url TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var trackingIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_tracking_events_campaign ON tracking_events(campaign_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tracking_events_action ON tracking_events(action)`,
}

// CreateClientStateSchema builds the key/value table backing the durable tier.
func (tc *TableCreator) CreateClientStateSchema(db *sql.DB) error {
	for _, tableSQL := range clientStateTables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}
	return nil
}

// CreateTrackingSchema builds the devserver's tracking tables and indexes.
func (tc *TableCreator) CreateTrackingSchema(db *sql.DB) error {
	for _, tableSQL := range trackingTables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range trackingIndexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}
