package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sekkipras/eqcat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	entries []models.AuditLogEntry
	failing bool
}

func (f *fakeStorage) AppendAudit(_ context.Context, entry models.AuditLogEntry) error {
	if f.failing {
		return errors.New("disk full")
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeStorage) ListAudit(_ context.Context, projectID string, filter models.AuditFilter) ([]models.AuditLogEntry, error) {
	var out []models.AuditLogEntry
	for _, e := range f.entries {
		if e.ProjectID != projectID {
			continue
		}
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if !filter.SinceUTC.IsZero() && e.TimestampUTC.Before(filter.SinceUTC) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeIdentity struct{}

func (fakeIdentity) PerformedBy() string { return "jdoe" }
func (fakeIdentity) Source() string      { return "unit-test" }

func TestRecorder_RecordStampsEntry(t *testing.T) {
	storage := &fakeStorage{}
	rec := NewRecorder(storage, fakeIdentity{})

	entry := NewEntry("proj", "equipment", "eq-1", models.ActionCreated, "created P-101",
		nil, map[string]any{"tag": "P-101"})
	require.NoError(t, rec.Record(context.Background(), entry))

	require.Len(t, storage.entries, 1)
	got := storage.entries[0]
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.TimestampUTC.IsZero())
	assert.Equal(t, "jdoe", got.PerformedBy)
	assert.Equal(t, "unit-test", got.Source)
	assert.Equal(t, models.ActionCreated, got.Action)
	assert.Equal(t, "P-101", got.NewSnapshot["tag"])
}

func TestRecorder_RecordKeepsCallerFields(t *testing.T) {
	storage := &fakeStorage{}
	rec := NewRecorder(storage, fakeIdentity{})

	when := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	entry := models.AuditLogEntry{
		ID:           "fixed-id",
		EntityType:   "equipment",
		EntityID:     "eq-1",
		Action:       models.ActionUpdated,
		PerformedBy:  "importer",
		TimestampUTC: when,
		ProjectID:    "proj",
	}
	require.NoError(t, rec.Record(context.Background(), entry))

	got := storage.entries[0]
	assert.Equal(t, "fixed-id", got.ID)
	assert.Equal(t, when, got.TimestampUTC)
	assert.Equal(t, "importer", got.PerformedBy)
}

func TestRecorder_RecordWrapsStorageError(t *testing.T) {
	rec := NewRecorder(&fakeStorage{failing: true}, fakeIdentity{})

	err := rec.Record(context.Background(), models.AuditLogEntry{EntityType: "equipment"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRecorder_QueryFilters(t *testing.T) {
	storage := &fakeStorage{}
	rec := NewRecorder(storage, fakeIdentity{})
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, action := range []models.AuditAction{models.ActionCreated, models.ActionUpdated, models.ActionDeleted} {
		entry := NewEntry("proj", "equipment", "eq-1", action, "", nil, nil)
		entry.TimestampUTC = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, rec.Record(ctx, entry))
	}

	got, err := rec.Query(ctx, "proj", models.AuditFilter{Action: models.ActionUpdated})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.ActionUpdated, got[0].Action)

	got, err = rec.Query(ctx, "proj", models.AuditFilter{SinceUTC: base.Add(30 * time.Minute)})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = rec.Query(ctx, "other", models.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
