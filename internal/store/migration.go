package store

import (
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 2

// RunMigrations applies any pending database migrations
func (s *Store) RunMigrations() error {
	version, err := s.getSchemaVersion()
	if err != nil {
		return err
	}

	if version < 2 {
		if err := s.migrateToV2(); err != nil {
			return fmt.Errorf("migration to v2 failed: %w", err)
		}
	}

	return nil
}

// getSchemaVersion returns the current schema version, 1 if not set
func (s *Store) getSchemaVersion() (int, error) {
	// Check if version table exists
	var tableName string
	err := s.db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='eqcat_schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		// Table doesn't exist, this is v1
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = s.db.QueryRow("SELECT COALESCE(MAX(version), 1) FROM eqcat_schema_version").Scan(&version)
	if err != nil {
		return 1, nil
	}

	return version, nil
}

// migrateToV2 adds the source column on audit_log and the drawings table
// for catalogs created before drawings were tracked.
func (s *Store) migrateToV2() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS eqcat_schema_version (
			version INTEGER PRIMARY KEY
		)`,

		`CREATE TABLE IF NOT EXISTS drawings (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			number TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_drawings_project ON drawings(project_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	// SQLite has no IF NOT EXISTS for ALTER TABLE, so check first
	if !s.columnExists("audit_log", "source") {
		if _, err := s.db.Exec(`ALTER TABLE audit_log ADD COLUMN source TEXT NOT NULL DEFAULT ''`); err != nil {
			return err
		}
	}
	if !s.columnExists("equipment", "drawing_id") {
		if _, err := s.db.Exec(`ALTER TABLE equipment ADD COLUMN drawing_id TEXT NOT NULL DEFAULT ''`); err != nil {
			return err
		}
	}

	// Record migration version
	_, err := s.db.Exec("INSERT OR REPLACE INTO eqcat_schema_version (version) VALUES (?)", 2)
	return err
}

// columnExists checks if a column exists in a table
func (s *Store) columnExists(table, column string) bool {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info(?)
		WHERE name = ?
	`, table, column).Scan(&count)
	return err == nil && count > 0
}
