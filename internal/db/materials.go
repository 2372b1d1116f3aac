package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const listMaterials = `
SELECT id, name, unit_value, available_quantity, minimum_quantity, office_id, image_path, created_by, active, created_at
FROM materials
WHERE active
ORDER BY name
`

func (q *Queries) ListMaterials(ctx context.Context) ([]Material, error) {
	rows, err := q.db.Query(ctx, listMaterials)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaterials(rows)
}

const listMaterialsByOffice = `
SELECT id, name, unit_value, available_quantity, minimum_quantity, office_id, image_path, created_by, active, created_at
FROM materials
WHERE active AND office_id = $1
ORDER BY name
`

func (q *Queries) ListMaterialsByOffice(ctx context.Context, officeID int64) ([]Material, error) {
	rows, err := q.db.Query(ctx, listMaterialsByOffice, officeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaterials(rows)
}

const getMaterialByID = `
SELECT id, name, unit_value, available_quantity, minimum_quantity, office_id, image_path, created_by, active, created_at
FROM materials
WHERE id = $1 AND active
`

func (q *Queries) GetMaterialByID(ctx context.Context, id int64) (Material, error) {
	var m Material
	err := q.db.QueryRow(ctx, getMaterialByID, id).Scan(
		&m.ID, &m.Name, &m.UnitValue, &m.AvailableQuantity, &m.MinimumQuantity,
		&m.OfficeID, &m.ImagePath, &m.CreatedBy, &m.Active, &m.CreatedAt,
	)
	return m, err
}

const getMaterialByIDForUpdate = `
SELECT id, name, unit_value, available_quantity, minimum_quantity, office_id, image_path, created_by, active, created_at
FROM materials
WHERE id = $1 AND active
FOR UPDATE
`

// GetMaterialByIDForUpdate locks the material row for the duration of the
// surrounding transaction.
func (q *Queries) GetMaterialByIDForUpdate(ctx context.Context, id int64) (Material, error) {
	var m Material
	err := q.db.QueryRow(ctx, getMaterialByIDForUpdate, id).Scan(
		&m.ID, &m.Name, &m.UnitValue, &m.AvailableQuantity, &m.MinimumQuantity,
		&m.OfficeID, &m.ImagePath, &m.CreatedBy, &m.Active, &m.CreatedAt,
	)
	return m, err
}

type CreateMaterialParams struct {
	Name              string
	UnitValue         decimal.Decimal
	AvailableQuantity int32
	MinimumQuantity   int32
	OfficeID          int64
	ImagePath         *string
	CreatedBy         string
}

const createMaterial = `
INSERT INTO materials (name, unit_value, available_quantity, minimum_quantity, office_id, image_path, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`

func (q *Queries) CreateMaterial(ctx context.Context, arg CreateMaterialParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, createMaterial,
		arg.Name, arg.UnitValue, arg.AvailableQuantity, arg.MinimumQuantity,
		arg.OfficeID, arg.ImagePath, arg.CreatedBy,
	).Scan(&id)
	return id, err
}

type UpdateMaterialParams struct {
	ID                int64
	Name              string
	UnitValue         decimal.Decimal
	AvailableQuantity int32
	MinimumQuantity   int32
	ImagePath         *string
}

const updateMaterial = `
UPDATE materials
SET name = $2, unit_value = $3, available_quantity = $4, minimum_quantity = $5,
    image_path = COALESCE($6, image_path)
WHERE id = $1 AND active
`

func (q *Queries) UpdateMaterial(ctx context.Context, arg UpdateMaterialParams) error {
	tag, err := q.db.Exec(ctx, updateMaterial,
		arg.ID, arg.Name, arg.UnitValue, arg.AvailableQuantity, arg.MinimumQuantity, arg.ImagePath,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const deactivateMaterial = `
UPDATE materials SET active = FALSE WHERE id = $1 AND active
`

func (q *Queries) DeactivateMaterial(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, deactivateMaterial, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const decrementMaterialStock = `
UPDATE materials
SET available_quantity = available_quantity - $2
WHERE id = $1 AND available_quantity >= $2
`

// DecrementMaterialStock subtracts quantity from the material's stock. It
// returns ErrInsufficientStock when the row would go negative.
func (q *Queries) DecrementMaterialStock(ctx context.Context, id int64, quantity int32) error {
	tag, err := q.db.Exec(ctx, decrementMaterialStock, id, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}

const listLowStockMaterials = `
SELECT id, name, unit_value, available_quantity, minimum_quantity, office_id, image_path, created_by, active, created_at
FROM materials
WHERE active AND available_quantity <= minimum_quantity
ORDER BY available_quantity
`

// ListLowStockMaterials returns materials at or below their minimum quantity.
func (q *Queries) ListLowStockMaterials(ctx context.Context) ([]Material, error) {
	rows, err := q.db.Query(ctx, listLowStockMaterials)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaterials(rows)
}

func scanMaterials(rows pgx.Rows) ([]Material, error) {
	var materials []Material
	for rows.Next() {
		var m Material
		if err := rows.Scan(
			&m.ID, &m.Name, &m.UnitValue, &m.AvailableQuantity, &m.MinimumQuantity,
			&m.OfficeID, &m.ImagePath, &m.CreatedBy, &m.Active, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}
