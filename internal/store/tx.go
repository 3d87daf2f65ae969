package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sekkipras/eqcat/internal/models"
	"github.com/sekkipras/eqcat/internal/renumber"
)

// Tx is one atomic unit of catalog mutation. Tag updates and their audit
// entries commit or roll back together. Concurrent transactions serialize
// at the SQLite write lock.
type Tx struct {
	tx *sql.Tx
}

// Begin opens a transaction against the catalog.
func (s *Store) Begin(ctx context.Context) (renumber.EquipmentTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// GetByID retrieves one equipment record inside the transaction
func (t *Tx) GetByID(ctx context.Context, id string) (models.Equipment, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+equipmentColumns+` FROM equipment WHERE id = ?`, id)
	eq, err := scanEquipment(row)
	if err == sql.ErrNoRows {
		return models.Equipment{}, fmt.Errorf("equipment not found: %s", id)
	}
	return eq, err
}

// Update persists an equipment record inside the transaction
func (t *Tx) Update(ctx context.Context, eq models.Equipment) error {
	return updateEquipment(ctx, t.tx, eq)
}

// RecordAudit appends an audit entry inside the transaction
func (t *Tx) RecordAudit(ctx context.Context, entry models.AuditLogEntry) error {
	return appendAudit(ctx, t.tx, entry)
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
