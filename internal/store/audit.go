package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sekkipras/eqcat/internal/models"
)

// AppendAudit inserts one audit entry. The trail exposes no update or
// delete; rows are immutable once written.
func (s *Store) AppendAudit(ctx context.Context, entry models.AuditLogEntry) error {
	return appendAudit(ctx, s.db, entry)
}

func appendAudit(ctx context.Context, db execer, entry models.AuditLogEntry) error {
	oldData, err := marshalSnapshot(entry.OldSnapshot)
	if err != nil {
		return fmt.Errorf("marshal old snapshot: %w", err)
	}
	newData, err := marshalSnapshot(entry.NewSnapshot)
	if err != nil {
		return fmt.Errorf("marshal new snapshot: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO audit_log (id, entity_type, entity_id, action, performed_by,
			timestamp_utc, change_summary, old_snapshot, new_snapshot, project_id, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.EntityType, entry.EntityID, string(entry.Action), entry.PerformedBy,
		entry.TimestampUTC, entry.ChangeSummary, oldData, newData, entry.ProjectID, entry.Source,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func marshalSnapshot(snapshot map[string]any) ([]byte, error) {
	if snapshot == nil {
		return nil, nil
	}
	return json.Marshal(snapshot)
}

// ListAudit returns a project's audit entries newest first. Filter fields
// are conjunctive; a zero SinceUTC means all time.
func (s *Store) ListAudit(ctx context.Context, projectID string, filter models.AuditFilter) ([]models.AuditLogEntry, error) {
	query := `
		SELECT id, entity_type, entity_id, action, performed_by,
			timestamp_utc, change_summary, old_snapshot, new_snapshot, project_id, source
		FROM audit_log
		WHERE project_id = ?`
	args := []any{projectID}

	var clauses []string
	if filter.EntityType != "" {
		clauses = append(clauses, "entity_type = ?")
		args = append(args, filter.EntityType)
	}
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(filter.Action))
	}
	if !filter.SinceUTC.IsZero() {
		clauses = append(clauses, "timestamp_utc >= ?")
		args = append(args, filter.SinceUTC)
	}
	if len(clauses) > 0 {
		query += " AND " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp_utc DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AuditLogEntry
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func scanAuditEntry(rows *sql.Rows) (models.AuditLogEntry, error) {
	var entry models.AuditLogEntry
	var action, timestamp string
	var oldData, newData []byte

	err := rows.Scan(
		&entry.ID, &entry.EntityType, &entry.EntityID, &action, &entry.PerformedBy,
		&timestamp, &entry.ChangeSummary, &oldData, &newData, &entry.ProjectID, &entry.Source,
	)
	if err != nil {
		return models.AuditLogEntry{}, err
	}

	entry.Action = models.AuditAction(action)
	entry.TimestampUTC = parseTimestamp(timestamp)
	if len(oldData) > 0 {
		if err := json.Unmarshal(oldData, &entry.OldSnapshot); err != nil {
			return models.AuditLogEntry{}, fmt.Errorf("unmarshal old snapshot: %w", err)
		}
	}
	if len(newData) > 0 {
		if err := json.Unmarshal(newData, &entry.NewSnapshot); err != nil {
			return models.AuditLogEntry{}, fmt.Errorf("unmarshal new snapshot: %w", err)
		}
	}
	return entry, nil
}
