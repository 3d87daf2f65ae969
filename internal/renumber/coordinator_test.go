package renumber

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sekkipras/eqcat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory EquipmentStore whose transactions buffer writes
// until Commit, so rollback semantics are observable from the outside.
type fakeStore struct {
	equipment map[string]models.Equipment
	audits    []models.AuditLogEntry

	failUpdateID string // inject an update failure for this equipment id
	beginErr     error
}

func newFakeStore(equipment ...models.Equipment) *fakeStore {
	s := &fakeStore{equipment: make(map[string]models.Equipment)}
	for _, eq := range equipment {
		s.equipment[eq.ID] = eq
	}
	return s
}

func (s *fakeStore) FindByProject(_ context.Context, projectID string) ([]models.Equipment, error) {
	var out []models.Equipment
	for _, eq := range s.equipment {
		if eq.ProjectID == projectID && eq.IsActive {
			out = append(out, eq)
		}
	}
	return out, nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (models.Equipment, error) {
	eq, ok := s.equipment[id]
	if !ok {
		return models.Equipment{}, fmt.Errorf("equipment not found: %s", id)
	}
	return eq, nil
}

func (s *fakeStore) Begin(_ context.Context) (EquipmentTx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &fakeTx{
		store:   s,
		pending: make(map[string]models.Equipment),
	}, nil
}

func (s *fakeStore) tags() map[string]string {
	out := make(map[string]string)
	for id, eq := range s.equipment {
		out[id] = eq.Tag
	}
	return out
}

type fakeTx struct {
	store         *fakeStore
	pending       map[string]models.Equipment
	pendingAudits []models.AuditLogEntry
	done          bool
}

func (t *fakeTx) GetByID(ctx context.Context, id string) (models.Equipment, error) {
	if eq, ok := t.pending[id]; ok {
		return eq, nil
	}
	return t.store.GetByID(ctx, id)
}

func (t *fakeTx) Update(_ context.Context, eq models.Equipment) error {
	if t.store.failUpdateID == eq.ID {
		return errors.New("simulated storage failure")
	}
	t.pending[eq.ID] = eq
	return nil
}

func (t *fakeTx) RecordAudit(_ context.Context, entry models.AuditLogEntry) error {
	t.pendingAudits = append(t.pendingAudits, entry)
	return nil
}

func (t *fakeTx) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.done = true
	for id, eq := range t.pending {
		t.store.equipment[id] = eq
	}
	t.store.audits = append(t.store.audits, t.pendingAudits...)
	return nil
}

func (t *fakeTx) Rollback() error {
	t.done = true
	return nil
}

type staticIdentity struct{}

func (staticIdentity) PerformedBy() string { return "operator" }
func (staticIdentity) Source() string      { return "test-host" }

func pump(id, tag, area string) models.Equipment {
	return models.Equipment{
		ID:            id,
		ProjectID:     "proj",
		Tag:           tag,
		EquipmentType: "Pump",
		Area:          area,
		IsActive:      true,
	}
}

// ==================== Filter Tests ====================

func TestFilter_Conjunctive(t *testing.T) {
	tank := models.Equipment{ID: "4", ProjectID: "proj", Tag: "TK-1", EquipmentType: "Tank", Area: "A01", IsActive: true}
	store := newFakeStore(
		pump("1", "P-001", "A01"),
		pump("2", "P-002", "A02"),
		pump("3", "OLD-9", "A01"),
		tank,
	)
	c := NewCoordinator(store, staticIdentity{})

	got, err := c.Filter(context.Background(), "proj", FilterSpec{EquipmentType: "Pump", Area: "A01"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "OLD-9", got[0].CurrentTag)
	assert.Equal(t, "P-001", got[1].CurrentTag)
	assert.True(t, got[0].Selected)
}

func TestFilter_TagWildcard(t *testing.T) {
	store := newFakeStore(
		pump("1", "P-001", "A01"),
		pump("2", "p-002", "A01"),
		pump("3", "TK-001", "A01"),
	)
	c := NewCoordinator(store, staticIdentity{})

	got, err := c.Filter(context.Background(), "proj", FilterSpec{TagGlob: "p-*"})
	require.NoError(t, err)
	require.Len(t, got, 2, "wildcard match is case-insensitive")

	got, err = c.Filter(context.Background(), "proj", FilterSpec{TagGlob: "*-001"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Anchored: no substring matching without '*'.
	got, err = c.Filter(context.Background(), "proj", FilterSpec{TagGlob: "001"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilter_ExcludesInactive(t *testing.T) {
	gone := pump("2", "P-002", "A01")
	gone.IsActive = false
	store := newFakeStore(pump("1", "P-001", "A01"), gone)
	c := NewCoordinator(store, staticIdentity{})

	got, err := c.Filter(context.Background(), "proj", FilterSpec{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

// ==================== Preview Tests ====================

func TestGeneratePreview_Sequence(t *testing.T) {
	c := NewCoordinator(newFakeStore(), staticIdentity{})
	candidates := []models.RenumberingCandidate{
		{EquipmentID: "1", CurrentTag: "A", EquipmentType: "Pump", Selected: true},
		{EquipmentID: "2", CurrentTag: "B", EquipmentType: "Pump", Selected: true},
		{EquipmentID: "3", CurrentTag: "C", EquipmentType: "Pump", Selected: true},
	}

	got, err := c.GeneratePreview(candidates, PatternSpec{Pattern: "P-{SEQ:001}", StartNumber: 10, Increment: 1})
	require.NoError(t, err)

	tags := []string{got[0].ProposedTag, got[1].ProposedTag, got[2].ProposedTag}
	assert.Equal(t, []string{"P-010", "P-011", "P-012"}, tags)

	// Input snapshot untouched.
	assert.Empty(t, candidates[0].ProposedTag)
}

func TestGeneratePreview_SkipsUnselected(t *testing.T) {
	c := NewCoordinator(newFakeStore(), staticIdentity{})
	candidates := []models.RenumberingCandidate{
		{EquipmentID: "1", Selected: true, EquipmentType: "Pump"},
		{EquipmentID: "2", Selected: false, EquipmentType: "Pump"},
		{EquipmentID: "3", Selected: true, EquipmentType: "Pump"},
	}

	got, err := c.GeneratePreview(candidates, PatternSpec{Pattern: "{SEQ}", StartNumber: 1, Increment: 2})
	require.NoError(t, err)
	assert.Equal(t, "1", got[0].ProposedTag)
	assert.Empty(t, got[1].ProposedTag, "unselected candidates get no proposal and consume no number")
	assert.Equal(t, "3", got[2].ProposedTag)
}

func TestGeneratePreview_Validation(t *testing.T) {
	c := NewCoordinator(newFakeStore(), staticIdentity{})

	var vErr *ValidationError
	_, err := c.GeneratePreview(nil, PatternSpec{Pattern: "", StartNumber: 1, Increment: 1})
	require.ErrorAs(t, err, &vErr)

	_, err = c.GeneratePreview(nil, PatternSpec{Pattern: "{SEQ}", StartNumber: 1, Increment: 0})
	require.ErrorAs(t, err, &vErr)

	// Start number may be zero or negative.
	_, err = c.GeneratePreview(nil, PatternSpec{Pattern: "{SEQ}", StartNumber: -5, Increment: 1})
	assert.NoError(t, err)
}

// ==================== Validate Tests ====================

func TestValidate_IntraBatchDuplicates(t *testing.T) {
	store := newFakeStore(pump("1", "P-001", "A01"), pump("2", "P-002", "A01"))
	c := NewCoordinator(store, staticIdentity{})

	candidates := []models.RenumberingCandidate{
		{EquipmentID: "1", Selected: true, ProposedTag: "P-100"},
		{EquipmentID: "2", Selected: true, ProposedTag: "P-100"},
	}
	report, err := c.Validate(context.Background(), "proj", candidates)
	require.NoError(t, err)
	assert.Equal(t, []string{"P-100"}, report.DuplicateTags)
	assert.False(t, report.Clean())
}

func TestValidate_StoreConflictOutsideBatch(t *testing.T) {
	store := newFakeStore(pump("1", "P-001", "A01"), pump("2", "P-777", "A01"))
	c := NewCoordinator(store, staticIdentity{})

	candidates := []models.RenumberingCandidate{
		{EquipmentID: "1", Selected: true, ProposedTag: "P-777"},
	}
	report, err := c.Validate(context.Background(), "proj", candidates)
	require.NoError(t, err)
	require.Len(t, report.StoreConflicts, 1)
	assert.Equal(t, "2", report.StoreConflicts[0].ExistingID)
}

func TestValidate_TagSwapWithinBatchIsClean(t *testing.T) {
	store := newFakeStore(pump("1", "P-001", "A01"), pump("2", "P-002", "A01"))
	c := NewCoordinator(store, staticIdentity{})

	// Swapping two tags inside one batch collides with nothing outside it.
	candidates := []models.RenumberingCandidate{
		{EquipmentID: "1", Selected: true, ProposedTag: "P-002"},
		{EquipmentID: "2", Selected: true, ProposedTag: "P-001"},
	}
	report, err := c.Validate(context.Background(), "proj", candidates)
	require.NoError(t, err)
	assert.True(t, report.Clean())
}

// ==================== Apply Tests ====================

func TestApply_Success(t *testing.T) {
	store := newFakeStore(pump("1", "OLD-1", "A01"), pump("2", "OLD-2", "A01"))
	c := NewCoordinator(store, staticIdentity{})
	ctx := context.Background()

	candidates, err := c.Filter(ctx, "proj", FilterSpec{})
	require.NoError(t, err)
	candidates, err = c.GeneratePreview(candidates, PatternSpec{Pattern: "{AREA}-{TYPE}-{SEQ:000}", StartNumber: 1, Increment: 1})
	require.NoError(t, err)

	result, err := c.Apply(ctx, "proj", candidates, ApplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 0, result.ErrorCount)

	assert.Equal(t, "A01-P-001", store.equipment["1"].Tag)
	assert.Equal(t, "A01-P-002", store.equipment["2"].Tag)

	require.Len(t, store.audits, 2)
	for _, entry := range store.audits {
		assert.Equal(t, models.ActionUpdated, entry.Action)
		assert.Equal(t, "operator", entry.PerformedBy)
		assert.Equal(t, "test-host", entry.Source)
		assert.Contains(t, entry.ChangeSummary, "batch renumbering")
		assert.NotEmpty(t, entry.OldSnapshot["tag"])
	}
	assert.Equal(t, "OLD-1", store.audits[0].OldSnapshot["tag"])
	assert.Equal(t, "A01-P-001", store.audits[0].NewSnapshot["tag"])
}

func TestApply_RefusesIntraBatchDuplicates(t *testing.T) {
	store := newFakeStore(pump("1", "OLD-1", "A01"), pump("2", "OLD-2", "A01"))
	before := store.tags()
	c := NewCoordinator(store, staticIdentity{})

	candidates := []models.RenumberingCandidate{
		{EquipmentID: "1", Selected: true, ProposedTag: "SAME"},
		{EquipmentID: "2", Selected: true, ProposedTag: "SAME"},
	}
	_, err := c.Apply(context.Background(), "proj", candidates, ApplyOptions{Override: true})

	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr, "duplicates refuse even with override")
	assert.Equal(t, before, store.tags(), "store unchanged after refused apply")
	assert.Empty(t, store.audits)
}

func TestApply_SoftConflictNeedsOverride(t *testing.T) {
	store := newFakeStore(pump("1", "OLD-1", "A01"), pump("2", "P-777", "A01"))
	c := NewCoordinator(store, staticIdentity{})
	ctx := context.Background()

	candidates := []models.RenumberingCandidate{
		{EquipmentID: "1", CurrentTag: "OLD-1", Selected: true, ProposedTag: "P-777"},
	}

	_, err := c.Apply(ctx, "proj", candidates, ApplyOptions{})
	var sErr *SoftConflictError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "OLD-1", store.equipment["1"].Tag)

	result, err := c.Apply(ctx, "proj", candidates, ApplyOptions{Override: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, "P-777", store.equipment["1"].Tag)

	require.Len(t, store.audits, 1)
	assert.Equal(t, "OLD-1", store.audits[0].OldSnapshot["tag"])
	assert.Contains(t, store.audits[0].ChangeSummary, "overridden")
}

func TestApply_StorageFailureRollsBackWholeBatch(t *testing.T) {
	store := newFakeStore(pump("1", "OLD-1", "A01"), pump("2", "OLD-2", "A01"), pump("3", "OLD-3", "A01"))
	store.failUpdateID = "2"
	before := store.tags()
	c := NewCoordinator(store, staticIdentity{})
	ctx := context.Background()

	candidates, err := c.Filter(ctx, "proj", FilterSpec{})
	require.NoError(t, err)
	candidates, err = c.GeneratePreview(candidates, PatternSpec{Pattern: "N-{SEQ:00}", StartNumber: 1, Increment: 1})
	require.NoError(t, err)

	result, err := c.Apply(ctx, "proj", candidates, ApplyOptions{})

	var stErr *StorageError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, "2", stErr.EquipmentID)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "2", result.Errors[0].EquipmentID)

	assert.Equal(t, before, store.tags(), "no partial renumbering persisted")
	assert.Empty(t, store.audits)
}

func TestApply_SkipsCandidatesWithoutProposal(t *testing.T) {
	store := newFakeStore(pump("1", "OLD-1", "A01"))
	c := NewCoordinator(store, staticIdentity{})

	candidates := []models.RenumberingCandidate{
		{EquipmentID: "1", Selected: true, ProposedTag: ""},
	}
	result, err := c.Apply(context.Background(), "proj", candidates, ApplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, "OLD-1", store.equipment["1"].Tag)
}
