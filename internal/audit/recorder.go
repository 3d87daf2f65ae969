// Package audit provides the append-only change trail. Entries are written
// exactly once per logical change; the recorder exposes no update or delete,
// retention is an external concern.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sekkipras/eqcat/internal/models"
)

// Storage is the persistence port the recorder writes through. Append must
// fail only on storage-layer errors, never on business grounds.
type Storage interface {
	AppendAudit(ctx context.Context, entry models.AuditLogEntry) error
	ListAudit(ctx context.Context, projectID string, filter models.AuditFilter) ([]models.AuditLogEntry, error)
}

// Identity supplies the actor and origin strings stamped onto entries. The
// recorder treats both as opaque.
type Identity interface {
	PerformedBy() string
	Source() string
}

// Recorder writes and queries audit entries.
type Recorder struct {
	storage  Storage
	identity Identity
}

func NewRecorder(storage Storage, identity Identity) *Recorder {
	return &Recorder{storage: storage, identity: identity}
}

// Record appends one entry to the trail, stamping id, timestamp, actor and
// source when the caller left them zero.
func (r *Recorder) Record(ctx context.Context, entry models.AuditLogEntry) error {
	stamp(&entry, r.identity)
	if err := r.storage.AppendAudit(ctx, entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// Query returns entries for a project, newest first. Filters are
// conjunctive; a zero SinceUTC means all time.
func (r *Recorder) Query(ctx context.Context, projectID string, filter models.AuditFilter) ([]models.AuditLogEntry, error) {
	return r.storage.ListAudit(ctx, projectID, filter)
}

// NewEntry builds an entry for one entity change with before/after
// snapshots. Snapshots may be nil for creations and deletions respectively.
func NewEntry(projectID, entityType, entityID string, action models.AuditAction, summary string, oldSnapshot, newSnapshot map[string]any) models.AuditLogEntry {
	return models.AuditLogEntry{
		EntityType:    entityType,
		EntityID:      entityID,
		Action:        action,
		ChangeSummary: summary,
		OldSnapshot:   oldSnapshot,
		NewSnapshot:   newSnapshot,
		ProjectID:     projectID,
	}
}

// stamp fills id, timestamp and identity fields left zero by the caller.
func stamp(entry *models.AuditLogEntry, identity Identity) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.TimestampUTC.IsZero() {
		entry.TimestampUTC = time.Now().UTC()
	}
	if identity != nil {
		if entry.PerformedBy == "" {
			entry.PerformedBy = identity.PerformedBy()
		}
		if entry.Source == "" {
			entry.Source = identity.Source()
		}
	}
}

// Stamp applies the recorder's identity and bookkeeping fields to an entry
// without persisting it. Used by callers that append entries inside their
// own transaction.
func (r *Recorder) Stamp(entry *models.AuditLogEntry) {
	stamp(entry, r.identity)
}
