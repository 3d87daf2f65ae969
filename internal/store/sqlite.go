// Package store provides SQLite-based persistence for the equipment
// catalog: equipment records, drawings, and the append-only audit trail.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store represents the SQLite database store
type Store struct {
	db *sql.DB
}

// New creates a new store connection
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize creates the database schema
func (s *Store) Initialize() error {
	schema := `
	-- Equipment catalog
	CREATE TABLE IF NOT EXISTS equipment (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		tag TEXT NOT NULL,
		equipment_type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		area TEXT NOT NULL DEFAULT '',
		drawing_id TEXT NOT NULL DEFAULT '',
		upstream_id TEXT NOT NULL DEFAULT '',
		downstream_id TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Drawings (source document references)
	CREATE TABLE IF NOT EXISTS drawings (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		number TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Audit trail (append-only)
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		action TEXT NOT NULL,
		performed_by TEXT NOT NULL DEFAULT '',
		timestamp_utc DATETIME NOT NULL,
		change_summary TEXT NOT NULL DEFAULT '',
		old_snapshot JSON,
		new_snapshot JSON,
		project_id TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT ''
	);

	-- Workspace metadata (project id, init marker)
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT
	);

	-- Schema version tracking
	CREATE TABLE IF NOT EXISTS eqcat_schema_version (
		version INTEGER PRIMARY KEY
	);

	-- Indexes
	CREATE INDEX IF NOT EXISTS idx_equipment_project ON equipment(project_id, is_active);
	CREATE INDEX IF NOT EXISTS idx_equipment_tag ON equipment(project_id, tag);
	CREATE INDEX IF NOT EXISTS idx_drawings_project ON drawings(project_id);
	CREATE INDEX IF NOT EXISTS idx_audit_project_time ON audit_log(project_id, timestamp_utc);
	CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity_type, entity_id);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Mark as current schema version
	_, err = s.db.Exec("INSERT OR REPLACE INTO eqcat_schema_version (version) VALUES (?)", currentSchemaVersion)
	if err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	return nil
}

// DB returns the underlying database connection for advanced queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// GetValue gets a value from the key-value store
func (s *Store) GetValue(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// CheckProject verifies the database belongs to the given project by
// comparing the project marker written at init time. Databases without a
// marker pass the check.
func (s *Store) CheckProject(projectID string) error {
	stored, err := s.GetValue("project_id")
	if err != nil {
		return fmt.Errorf("read project marker: %w", err)
	}
	if stored != "" && stored != projectID {
		return fmt.Errorf("catalog belongs to project %s, not %s", stored, projectID)
	}
	return nil
}

// SetValue sets a value in the key-value store
func (s *Store) SetValue(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = ?",
		key, value, value,
	)
	return err
}

// parseTimestamp parses a timestamp string from SQLite in various formats
func parseTimestamp(s string) time.Time {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999+07:00",
		"2006-01-02 15:04:05.999999-07:00",
		"2006-01-02 15:04:05.999999+07:00",
		"2006-01-02 15:04:05-07:00",
		"2006-01-02 15:04:05+07:00",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
