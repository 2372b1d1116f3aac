package db

import (
	"context"
)

const listOffices = `
SELECT id, name, director, location, email, is_principal, active, created_at
FROM offices
WHERE active
ORDER BY is_principal DESC, name
`

func (q *Queries) ListOffices(ctx context.Context) ([]Office, error) {
	rows, err := q.db.Query(ctx, listOffices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offices []Office
	for rows.Next() {
		var o Office
		if err := rows.Scan(&o.ID, &o.Name, &o.Director, &o.Location, &o.Email, &o.IsPrincipal, &o.Active, &o.CreatedAt); err != nil {
			return nil, err
		}
		offices = append(offices, o)
	}
	return offices, rows.Err()
}

const getOfficeByID = `
SELECT id, name, director, location, email, is_principal, active, created_at
FROM offices
WHERE id = $1 AND active
`

func (q *Queries) GetOfficeByID(ctx context.Context, id int64) (Office, error) {
	var o Office
	err := q.db.QueryRow(ctx, getOfficeByID, id).Scan(
		&o.ID, &o.Name, &o.Director, &o.Location, &o.Email, &o.IsPrincipal, &o.Active, &o.CreatedAt,
	)
	return o, err
}

const getOfficeByName = `
SELECT id, name, director, location, email, is_principal, active, created_at
FROM offices
WHERE upper(name) = upper($1) AND active
`

func (q *Queries) GetOfficeByName(ctx context.Context, name string) (Office, error) {
	var o Office
	err := q.db.QueryRow(ctx, getOfficeByName, name).Scan(
		&o.ID, &o.Name, &o.Director, &o.Location, &o.Email, &o.IsPrincipal, &o.Active, &o.CreatedAt,
	)
	return o, err
}

const getPrincipalOffice = `
SELECT id, name, director, location, email, is_principal, active, created_at
FROM offices
WHERE is_principal AND active
ORDER BY id
LIMIT 1
`

func (q *Queries) GetPrincipalOffice(ctx context.Context) (Office, error) {
	var o Office
	err := q.db.QueryRow(ctx, getPrincipalOffice).Scan(
		&o.ID, &o.Name, &o.Director, &o.Location, &o.Email, &o.IsPrincipal, &o.Active, &o.CreatedAt,
	)
	return o, err
}

type CreateOfficeParams struct {
	Name     string
	Director string
	Location string
	Email    string
}

const createOffice = `
INSERT INTO offices (name, director, location, email)
VALUES ($1, $2, $3, $4)
RETURNING id
`

func (q *Queries) CreateOffice(ctx context.Context, arg CreateOfficeParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, createOffice, arg.Name, arg.Director, arg.Location, arg.Email).Scan(&id)
	return id, err
}

type UpdateOfficeParams struct {
	ID       int64
	Name     string
	Director string
	Location string
	Email    string
}

const updateOffice = `
UPDATE offices
SET name = $2, director = $3, location = $4, email = $5
WHERE id = $1 AND active
`

func (q *Queries) UpdateOffice(ctx context.Context, arg UpdateOfficeParams) error {
	tag, err := q.db.Exec(ctx, updateOffice, arg.ID, arg.Name, arg.Director, arg.Location, arg.Email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const deactivateOffice = `
UPDATE offices SET active = FALSE WHERE id = $1 AND NOT is_principal
`

// DeactivateOffice soft-deletes an office. The principal office cannot be removed.
func (q *Queries) DeactivateOffice(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, deactivateOffice, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
