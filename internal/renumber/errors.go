package renumber

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed renumbering parameters. It is returned
// before any store access and is never retried automatically.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid renumbering parameters: " + e.Reason
}

// ConflictError reports duplicate proposed tags inside one batch. It is
// always fatal to the attempted apply; the operator must change the filter
// or pattern and retry.
type ConflictError struct {
	DuplicateTags []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate proposed tags within batch: %s", strings.Join(e.DuplicateTags, ", "))
}

// SoftConflictError reports proposed tags colliding with existing equipment
// outside the batch. The apply may be retried with an explicit override.
type SoftConflictError struct {
	Conflicts []StoreConflict
}

func (e *SoftConflictError) Error() string {
	tags := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		tags = append(tags, c.ProposedTag)
	}
	return fmt.Sprintf("proposed tags collide with existing equipment: %s", strings.Join(tags, ", "))
}

// StorageError reports a failure during the transactional apply. The whole
// batch was rolled back; the caller may re-invoke it after correcting the
// underlying condition.
type StorageError struct {
	EquipmentID string
	Err         error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("apply failed at equipment %s: %v", e.EquipmentID, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
