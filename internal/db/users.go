package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const getUserByUsername = `
SELECT u.id, u.username, u.display_name, u.password_hash, u.role, u.office_id,
       o.name, u.active, u.created_at
FROM users u
JOIN offices o ON o.id = u.office_id
WHERE u.username = $1 AND u.active
`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, getUserByUsername, username).Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.Role,
		&u.OfficeID, &u.OfficeName, &u.Active, &u.CreatedAt,
	)
	return u, err
}

const getUserByID = `
SELECT u.id, u.username, u.display_name, u.password_hash, u.role, u.office_id,
       o.name, u.active, u.created_at
FROM users u
JOIN offices o ON o.id = u.office_id
WHERE u.id = $1 AND u.active
`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, getUserByID, id).Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.Role,
		&u.OfficeID, &u.OfficeName, &u.Active, &u.CreatedAt,
	)
	return u, err
}

const listApprovers = `
SELECT u.id, u.username, u.display_name, u.password_hash, u.role, u.office_id,
       o.name, u.active, u.created_at
FROM users u
JOIN offices o ON o.id = u.office_id
WHERE u.role IN ('administrador', 'lider_inventario') AND u.active
ORDER BY u.display_name
`

// ListApprovers returns the users holding approving roles.
func (q *Queries) ListApprovers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, listApprovers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

type CreateUserParams struct {
	Username     string
	DisplayName  string
	PasswordHash string
	Role         string
	OfficeID     int64
}

const createUser = `
INSERT INTO users (username, display_name, password_hash, role, office_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, createUser,
		arg.Username, arg.DisplayName, arg.PasswordHash, arg.Role, arg.OfficeID,
	).Scan(&id)
	return id, err
}

func scanUsers(rows pgx.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.Role,
			&u.OfficeID, &u.OfficeName, &u.Active, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
