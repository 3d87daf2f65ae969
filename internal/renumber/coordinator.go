// Package renumber orchestrates batch tag renumbering: filtering candidates,
// expanding the tag pattern into a preview, detecting conflicts, and applying
// the accepted changes atomically with one audit entry per rename.
//
// The pipeline is value-producing: Filter, GeneratePreview, Validate and
// Apply each return a new snapshot instead of mutating shared state. Candidate order is assigned by Filter and must be kept stable
// between preview and apply.
package renumber

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sekkipras/eqcat/internal/models"
	"github.com/sekkipras/eqcat/internal/tagpattern"
)

// FilterSpec narrows the candidate set. Empty fields match everything;
// populated fields are conjunctive. TagGlob supports '*' wildcards matching
// any run of characters, anchored and case-insensitive.
type FilterSpec struct {
	EquipmentType string
	Area          string
	TagGlob       string
}

// PatternSpec carries the pattern and numbering parameters for a preview.
type PatternSpec struct {
	Pattern     string
	StartNumber int
	Increment   int
	// TypeCodes overrides the default type-code table when non-nil.
	TypeCodes map[string]string
}

// StoreConflict is one proposed tag colliding with equipment outside the
// batch.
type StoreConflict struct {
	ProposedTag string
	// ExistingID and ExistingTag identify the unrelated equipment that
	// already carries the tag.
	ExistingID  string
	ExistingTag string
}

// ConflictReport is the outcome of pre-commit validation. DuplicateTags are
// a hard stop; StoreConflicts may be overridden explicitly.
type ConflictReport struct {
	DuplicateTags  []string
	StoreConflicts []StoreConflict
}

// Clean reports whether the batch can apply without override.
func (r ConflictReport) Clean() bool {
	return len(r.DuplicateTags) == 0 && len(r.StoreConflicts) == 0
}

// ApplyOptions tunes the apply step. Override confirms proceeding past
// store conflicts; intra-batch duplicates can never be overridden.
type ApplyOptions struct {
	Override bool
}

// ItemError is one failed rename inside an apply attempt.
type ItemError struct {
	EquipmentID string
	CurrentTag  string
	Err         error
}

// Result summarizes an apply. After a rollback SuccessCount is zero
// regardless of how many items had already been written.
type Result struct {
	SuccessCount int
	ErrorCount   int
	Errors       []ItemError
}

// Coordinator runs the renumbering pipeline against an equipment store.
type Coordinator struct {
	store    EquipmentStore
	identity IdentitySource
}

func NewCoordinator(store EquipmentStore, identity IdentitySource) *Coordinator {
	return &Coordinator{store: store, identity: identity}
}

// Filter derives the candidate set for one project, all candidates selected,
// ordered by current tag. The ordering is what makes preview and apply
// deterministic.
func (c *Coordinator) Filter(ctx context.Context, projectID string, spec FilterSpec) ([]models.RenumberingCandidate, error) {
	equipment, err := c.store.FindByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project equipment: %w", err)
	}

	var tagRe *regexp.Regexp
	if spec.TagGlob != "" {
		tagRe, err = compileTagGlob(spec.TagGlob)
		if err != nil {
			return nil, err
		}
	}

	candidates := make([]models.RenumberingCandidate, 0, len(equipment))
	for _, eq := range equipment {
		if !eq.IsActive {
			continue
		}
		if spec.EquipmentType != "" && eq.EquipmentType != spec.EquipmentType {
			continue
		}
		if spec.Area != "" && eq.Area != spec.Area {
			continue
		}
		if tagRe != nil && !tagRe.MatchString(eq.Tag) {
			continue
		}
		candidates = append(candidates, models.RenumberingCandidate{
			EquipmentID:   eq.ID,
			CurrentTag:    eq.Tag,
			EquipmentType: eq.EquipmentType,
			Area:          eq.Area,
			Selected:      true,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CurrentTag < candidates[j].CurrentTag
	})
	return candidates, nil
}

// compileTagGlob turns a '*' wildcard into an anchored case-insensitive
// regexp; all other characters match literally.
func compileTagGlob(glob string) (*regexp.Regexp, error) {
	parts := strings.Split(glob, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile("(?i)^" + strings.Join(parts, ".*") + "$")
	if err != nil {
		return nil, fmt.Errorf("compile tag filter %q: %w", glob, err)
	}
	return re, nil
}

// GeneratePreview assigns proposed tags to the selected candidates in their
// current order, walking the sequence from StartNumber by Increment. The
// input slice is not modified.
func (c *Coordinator) GeneratePreview(candidates []models.RenumberingCandidate, spec PatternSpec) ([]models.RenumberingCandidate, error) {
	if strings.TrimSpace(spec.Pattern) == "" {
		return nil, &ValidationError{Reason: "pattern is empty"}
	}
	if spec.Increment < 1 {
		return nil, &ValidationError{Reason: fmt.Sprintf("increment must be at least 1, got %d", spec.Increment)}
	}

	out := make([]models.RenumberingCandidate, len(candidates))
	copy(out, candidates)

	number := spec.StartNumber
	for i := range out {
		if !out[i].Selected {
			out[i].ProposedTag = ""
			continue
		}
		tag, err := tagpattern.Expand(spec.Pattern, tagpattern.ExpansionContext{
			TypeCodes:     spec.TypeCodes,
			EquipmentType: out[i].EquipmentType,
			Area:          out[i].Area,
		}, number)
		if err != nil {
			return nil, &ValidationError{Reason: err.Error()}
		}
		out[i].ProposedTag = tag
		number += spec.Increment
	}
	return out, nil
}

// Validate checks the previewed batch for intra-batch duplicates and for
// collisions with active tags of equipment outside the batch.
func (c *Coordinator) Validate(ctx context.Context, projectID string, candidates []models.RenumberingCandidate) (ConflictReport, error) {
	var report ConflictReport

	seen := make(map[string]int)
	inBatch := make(map[string]bool)
	for _, cand := range candidates {
		if !cand.Selected || cand.ProposedTag == "" {
			continue
		}
		seen[cand.ProposedTag]++
		inBatch[cand.EquipmentID] = true
	}
	for tag, count := range seen {
		if count > 1 {
			report.DuplicateTags = append(report.DuplicateTags, tag)
		}
	}
	sort.Strings(report.DuplicateTags)

	equipment, err := c.store.FindByProject(ctx, projectID)
	if err != nil {
		return ConflictReport{}, fmt.Errorf("load project equipment: %w", err)
	}
	existing := make(map[string]models.Equipment, len(equipment))
	for _, eq := range equipment {
		if eq.IsActive && !inBatch[eq.ID] {
			existing[eq.Tag] = eq
		}
	}
	for _, cand := range candidates {
		if !cand.Selected || cand.ProposedTag == "" {
			continue
		}
		if eq, ok := existing[cand.ProposedTag]; ok {
			report.StoreConflicts = append(report.StoreConflicts, StoreConflict{
				ProposedTag: cand.ProposedTag,
				ExistingID:  eq.ID,
				ExistingTag: eq.Tag,
			})
		}
	}
	sort.Slice(report.StoreConflicts, func(i, j int) bool {
		return report.StoreConflicts[i].ProposedTag < report.StoreConflicts[j].ProposedTag
	})

	return report, nil
}

// Apply commits the previewed renames in one transaction. Intra-batch
// duplicates always refuse; store conflicts refuse unless opts.Override.
// Any item failure rolls the entire batch back, so no partial renumbering
// is ever persisted, and the result reports zero successes plus the
// triggering item error.
func (c *Coordinator) Apply(ctx context.Context, projectID string, candidates []models.RenumberingCandidate, opts ApplyOptions) (Result, error) {
	report, err := c.Validate(ctx, projectID, candidates)
	if err != nil {
		return Result{}, err
	}
	if len(report.DuplicateTags) > 0 {
		return Result{}, &ConflictError{DuplicateTags: report.DuplicateTags}
	}
	if len(report.StoreConflicts) > 0 && !opts.Override {
		return Result{}, &SoftConflictError{Conflicts: report.StoreConflicts}
	}

	overriddenTags := make(map[string]bool, len(report.StoreConflicts))
	for _, conflict := range report.StoreConflicts {
		overriddenTags[conflict.ProposedTag] = true
	}

	tx, err := c.store.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("begin transaction: %w", err)
	}

	applied := 0
	for _, cand := range candidates {
		if !cand.Selected || cand.ProposedTag == "" {
			continue
		}
		if err := c.applyOne(ctx, tx, projectID, cand, overriddenTags[cand.ProposedTag]); err != nil {
			tx.Rollback()
			itemErr := &StorageError{EquipmentID: cand.EquipmentID, Err: err}
			return Result{
				ErrorCount: 1,
				Errors: []ItemError{{
					EquipmentID: cand.EquipmentID,
					CurrentTag:  cand.CurrentTag,
					Err:         itemErr,
				}},
			}, itemErr
		}
		applied++
	}

	if err := tx.Commit(); err != nil {
		return Result{ErrorCount: 1}, &StorageError{Err: fmt.Errorf("commit: %w", err)}
	}
	return Result{SuccessCount: applied}, nil
}

// applyOne renames a single equipment record inside the transaction and
// writes its audit entry.
func (c *Coordinator) applyOne(ctx context.Context, tx EquipmentTx, projectID string, cand models.RenumberingCandidate, overridden bool) error {
	eq, err := tx.GetByID(ctx, cand.EquipmentID)
	if err != nil {
		return fmt.Errorf("load equipment: %w", err)
	}

	oldSnapshot := eq.Snapshot()
	oldTag := eq.Tag
	eq.Tag = cand.ProposedTag
	eq.UpdatedAt = time.Now().UTC()
	if err := tx.Update(ctx, eq); err != nil {
		return fmt.Errorf("update tag: %w", err)
	}

	summary := fmt.Sprintf("batch renumbering: %s -> %s", oldTag, cand.ProposedTag)
	if overridden {
		summary += " (store conflict overridden)"
	}
	entry := models.AuditLogEntry{
		ID:            uuid.NewString(),
		EntityType:    "equipment",
		EntityID:      eq.ID,
		Action:        models.ActionUpdated,
		TimestampUTC:  time.Now().UTC(),
		ChangeSummary: summary,
		OldSnapshot:   oldSnapshot,
		NewSnapshot:   eq.Snapshot(),
		ProjectID:     projectID,
	}
	if c.identity != nil {
		entry.PerformedBy = c.identity.PerformedBy()
		entry.Source = c.identity.Source()
	}
	if err := tx.RecordAudit(ctx, entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}
