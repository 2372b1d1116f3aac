package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const corporateItemSelect = `
SELECT i.id, i.code, i.name, i.description,
       i.category_id, c.name, i.supplier_id, p.name,
       i.unit_value, i.quantity, i.minimum_quantity, i.location,
       i.assignable, i.image_path, i.created_by, i.active, i.created_at
FROM corporate_items i
JOIN categories c ON c.id = i.category_id
JOIN suppliers p ON p.id = i.supplier_id
`

func scanCorporateItem(row pgx.Row, i *CorporateItem) error {
	return row.Scan(
		&i.ID, &i.Code, &i.Name, &i.Description,
		&i.CategoryID, &i.CategoryName, &i.SupplierID, &i.SupplierName,
		&i.UnitValue, &i.Quantity, &i.MinimumQuantity, &i.Location,
		&i.Assignable, &i.ImagePath, &i.CreatedBy, &i.Active, &i.CreatedAt,
	)
}

const listCorporateItems = corporateItemSelect + `
WHERE i.active
ORDER BY i.name
`

func (q *Queries) ListCorporateItems(ctx context.Context) ([]CorporateItem, error) {
	rows, err := q.db.Query(ctx, listCorporateItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CorporateItem
	for rows.Next() {
		var i CorporateItem
		if err := rows.Scan(
			&i.ID, &i.Code, &i.Name, &i.Description,
			&i.CategoryID, &i.CategoryName, &i.SupplierID, &i.SupplierName,
			&i.UnitValue, &i.Quantity, &i.MinimumQuantity, &i.Location,
			&i.Assignable, &i.ImagePath, &i.CreatedBy, &i.Active, &i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getCorporateItemByID = corporateItemSelect + `
WHERE i.id = $1 AND i.active
`

func (q *Queries) GetCorporateItemByID(ctx context.Context, id int64) (CorporateItem, error) {
	var i CorporateItem
	err := scanCorporateItem(q.db.QueryRow(ctx, getCorporateItemByID, id), &i)
	return i, err
}

const getCorporateItemByIDForUpdate = corporateItemSelect + `
WHERE i.id = $1 AND i.active
FOR UPDATE OF i
`

func (q *Queries) GetCorporateItemByIDForUpdate(ctx context.Context, id int64) (CorporateItem, error) {
	var i CorporateItem
	err := scanCorporateItem(q.db.QueryRow(ctx, getCorporateItemByIDForUpdate, id), &i)
	return i, err
}

type CreateCorporateItemParams struct {
	Code            string
	Name            string
	Description     string
	CategoryID      int64
	SupplierID      int64
	UnitValue       decimal.Decimal
	Quantity        int32
	MinimumQuantity int32
	Location        string
	Assignable      bool
	ImagePath       *string
	CreatedBy       string
}

const createCorporateItem = `
INSERT INTO corporate_items (code, name, description, category_id, supplier_id,
                             unit_value, quantity, minimum_quantity, location,
                             assignable, image_path, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id
`

func (q *Queries) CreateCorporateItem(ctx context.Context, arg CreateCorporateItemParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, createCorporateItem,
		arg.Code, arg.Name, arg.Description, arg.CategoryID, arg.SupplierID,
		arg.UnitValue, arg.Quantity, arg.MinimumQuantity, arg.Location,
		arg.Assignable, arg.ImagePath, arg.CreatedBy,
	).Scan(&id)
	return id, err
}

type UpdateCorporateItemParams struct {
	ID              int64
	Name            string
	Description     string
	CategoryID      int64
	SupplierID      int64
	UnitValue       decimal.Decimal
	Quantity        int32
	MinimumQuantity int32
	Location        string
	Assignable      bool
	ImagePath       *string
}

const updateCorporateItem = `
UPDATE corporate_items
SET name = $2, description = $3, category_id = $4, supplier_id = $5,
    unit_value = $6, quantity = $7, minimum_quantity = $8, location = $9,
    assignable = $10, image_path = COALESCE($11, image_path)
WHERE id = $1 AND active
`

func (q *Queries) UpdateCorporateItem(ctx context.Context, arg UpdateCorporateItemParams) error {
	tag, err := q.db.Exec(ctx, updateCorporateItem,
		arg.ID, arg.Name, arg.Description, arg.CategoryID, arg.SupplierID,
		arg.UnitValue, arg.Quantity, arg.MinimumQuantity, arg.Location,
		arg.Assignable, arg.ImagePath,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const deactivateCorporateItem = `
UPDATE corporate_items SET active = FALSE WHERE id = $1 AND active
`

func (q *Queries) DeactivateCorporateItem(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, deactivateCorporateItem, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const decrementCorporateStock = `
UPDATE corporate_items
SET quantity = quantity - $2
WHERE id = $1 AND quantity >= $2
`

func (q *Queries) DecrementCorporateStock(ctx context.Context, id int64, quantity int32) error {
	tag, err := q.db.Exec(ctx, decrementCorporateStock, id, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}

type CreateAssignmentParams struct {
	ItemID     int64
	OfficeID   int64
	Quantity   int32
	AssignedBy string
}

const createAssignment = `
INSERT INTO corporate_assignments (item_id, office_id, quantity, assigned_by)
VALUES ($1, $2, $3, $4)
RETURNING id
`

func (q *Queries) CreateAssignment(ctx context.Context, arg CreateAssignmentParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, createAssignment,
		arg.ItemID, arg.OfficeID, arg.Quantity, arg.AssignedBy,
	).Scan(&id)
	return id, err
}

const listAssignmentsByItem = `
SELECT a.id, a.item_id, a.office_id, o.name, a.quantity, a.assigned_by, a.assigned_at
FROM corporate_assignments a
JOIN offices o ON o.id = a.office_id
WHERE a.item_id = $1
ORDER BY a.assigned_at DESC
`

func (q *Queries) ListAssignmentsByItem(ctx context.Context, itemID int64) ([]CorporateAssignment, error) {
	rows, err := q.db.Query(ctx, listAssignmentsByItem, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

const listAssignmentsByOffice = `
SELECT a.id, a.item_id, a.office_id, o.name, a.quantity, a.assigned_by, a.assigned_at
FROM corporate_assignments a
JOIN offices o ON o.id = a.office_id
WHERE a.office_id = $1
ORDER BY a.assigned_at DESC
`

func (q *Queries) ListAssignmentsByOffice(ctx context.Context, officeID int64) ([]CorporateAssignment, error) {
	rows, err := q.db.Query(ctx, listAssignmentsByOffice, officeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (q *Queries) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := q.db.Query(ctx, `SELECT id, name FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func scanAssignments(rows pgx.Rows) ([]CorporateAssignment, error) {
	var assignments []CorporateAssignment
	for rows.Next() {
		var a CorporateAssignment
		if err := rows.Scan(&a.ID, &a.ItemID, &a.OfficeID, &a.OfficeName, &a.Quantity, &a.AssignedBy, &a.AssignedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
