package renumber

import (
	"context"

	"github.com/sekkipras/eqcat/internal/models"
)

// EquipmentStore is the catalog the coordinator reads candidates from and
// writes renames to. Implementations must serialize concurrent transactions
// against the same project's equipment set.
type EquipmentStore interface {
	// FindByProject returns the active equipment of a project.
	FindByProject(ctx context.Context, projectID string) ([]models.Equipment, error)
	GetByID(ctx context.Context, id string) (models.Equipment, error)
	// Begin opens a transaction. The caller must Commit or Rollback it.
	Begin(ctx context.Context) (EquipmentTx, error)
}

// EquipmentTx is one atomic unit of catalog mutation. Audit entries written
// through the transaction commit and roll back with the tag updates.
type EquipmentTx interface {
	GetByID(ctx context.Context, id string) (models.Equipment, error)
	Update(ctx context.Context, eq models.Equipment) error
	RecordAudit(ctx context.Context, entry models.AuditLogEntry) error
	Commit() error
	Rollback() error
}

// IdentitySource supplies the actor and origin strings for audit entries.
type IdentitySource interface {
	PerformedBy() string
	Source() string
}
