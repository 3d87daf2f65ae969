package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sekkipras/eqcat/internal/models"
)

const equipmentColumns = `id, project_id, tag, equipment_type, description, area,
	drawing_id, upstream_id, downstream_id, is_active, created_at, updated_at`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEquipment(row rowScanner) (models.Equipment, error) {
	var eq models.Equipment
	var createdAt, updatedAt string
	err := row.Scan(
		&eq.ID, &eq.ProjectID, &eq.Tag, &eq.EquipmentType, &eq.Description, &eq.Area,
		&eq.DrawingID, &eq.UpstreamID, &eq.DownstreamID, &eq.IsActive, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.Equipment{}, err
	}
	eq.CreatedAt = parseTimestamp(createdAt)
	eq.UpdatedAt = parseTimestamp(updatedAt)
	return eq, nil
}

// CreateEquipment inserts a new equipment record
func (s *Store) CreateEquipment(ctx context.Context, eq models.Equipment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO equipment (id, project_id, tag, equipment_type, description, area,
			drawing_id, upstream_id, downstream_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		eq.ID, eq.ProjectID, eq.Tag, eq.EquipmentType, eq.Description, eq.Area,
		eq.DrawingID, eq.UpstreamID, eq.DownstreamID, eq.IsActive, eq.CreatedAt, eq.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create equipment %s: %w", eq.Tag, err)
	}
	return nil
}

// GetByID retrieves one equipment record, active or not
func (s *Store) GetByID(ctx context.Context, id string) (models.Equipment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+equipmentColumns+` FROM equipment WHERE id = ?`, id)
	eq, err := scanEquipment(row)
	if err == sql.ErrNoRows {
		return models.Equipment{}, fmt.Errorf("equipment not found: %s", id)
	}
	return eq, err
}

// GetByTag retrieves an active equipment record by its tag
func (s *Store) GetByTag(ctx context.Context, projectID, tag string) (models.Equipment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+equipmentColumns+` FROM equipment
		 WHERE project_id = ? AND tag = ? AND is_active = TRUE`, projectID, tag)
	eq, err := scanEquipment(row)
	if err == sql.ErrNoRows {
		return models.Equipment{}, fmt.Errorf("equipment not found: %s", tag)
	}
	return eq, err
}

// FindByProject returns the active equipment of a project ordered by tag
func (s *Store) FindByProject(ctx context.Context, projectID string) ([]models.Equipment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+equipmentColumns+` FROM equipment
		 WHERE project_id = ? AND is_active = TRUE
		 ORDER BY tag`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Equipment
	for rows.Next() {
		eq, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, eq)
	}
	return out, rows.Err()
}

// Update persists every mutable field of an equipment record
func (s *Store) Update(ctx context.Context, eq models.Equipment) error {
	return updateEquipment(ctx, s.db, eq)
}

// execer covers *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateEquipment(ctx context.Context, db execer, eq models.Equipment) error {
	res, err := db.ExecContext(ctx, `
		UPDATE equipment
		SET tag = ?, equipment_type = ?, description = ?, area = ?,
			drawing_id = ?, upstream_id = ?, downstream_id = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		eq.Tag, eq.EquipmentType, eq.Description, eq.Area,
		eq.DrawingID, eq.UpstreamID, eq.DownstreamID, eq.IsActive, eq.UpdatedAt,
		eq.ID,
	)
	if err != nil {
		return fmt.Errorf("update equipment %s: %w", eq.ID, err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("equipment not found: %s", eq.ID)
	}
	return nil
}

// CreateDrawing inserts a new drawing reference
func (s *Store) CreateDrawing(ctx context.Context, d models.Drawing) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drawings (id, project_id, number, title, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.ProjectID, d.Number, d.Title, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create drawing %s: %w", d.Number, err)
	}
	return nil
}

// ListDrawings returns a project's drawings ordered by number
func (s *Store) ListDrawings(ctx context.Context, projectID string) ([]models.Drawing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, number, title, created_at
		FROM drawings WHERE project_id = ? ORDER BY number, id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Drawing
	for rows.Next() {
		var d models.Drawing
		var createdAt string
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Number, &d.Title, &createdAt); err != nil {
			return nil, err
		}
		d.CreatedAt = parseTimestamp(createdAt)
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDrawingByNumber retrieves a drawing by its identifying number
func (s *Store) GetDrawingByNumber(ctx context.Context, projectID, number string) (models.Drawing, error) {
	var d models.Drawing
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, number, title, created_at
		FROM drawings WHERE project_id = ? AND number = ?`, projectID, number).
		Scan(&d.ID, &d.ProjectID, &d.Number, &d.Title, &createdAt)
	if err == sql.ErrNoRows {
		return models.Drawing{}, fmt.Errorf("drawing not found: %s", number)
	}
	if err != nil {
		return models.Drawing{}, err
	}
	d.CreatedAt = parseTimestamp(createdAt)
	return d, nil
}
