package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const requestSelect = `
SELECT r.id, r.office_id, o.name, r.material_id, m.name, r.quantity,
       r.office_percentage, r.state_id, s.name, r.requester_name, r.observation,
       r.total_value, r.office_value, r.main_office_value,
       m.unit_value, m.available_quantity,
       r.resolved_by, r.resolved_at, r.created_at
FROM requests r
JOIN offices o ON o.id = r.office_id
JOIN materials m ON m.id = r.material_id
JOIN request_states s ON s.id = r.state_id
`

func scanRequest(row pgx.Row, r *Request) error {
	return row.Scan(
		&r.ID, &r.OfficeID, &r.OfficeName, &r.MaterialID, &r.MaterialName, &r.Quantity,
		&r.OfficePercentage, &r.StateID, &r.StateName, &r.RequesterName, &r.Observation,
		&r.TotalValue, &r.OfficeValue, &r.MainOfficeValue,
		&r.UnitValue, &r.AvailableStock,
		&r.ResolvedBy, &r.ResolvedAt, &r.CreatedAt,
	)
}

const listRequests = requestSelect + `
ORDER BY r.created_at DESC
`

func (q *Queries) ListRequests(ctx context.Context) ([]Request, error) {
	rows, err := q.db.Query(ctx, listRequests)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

const listRequestsByOffice = requestSelect + `
WHERE r.office_id = $1
ORDER BY r.created_at DESC
`

func (q *Queries) ListRequestsByOffice(ctx context.Context, officeID int64) ([]Request, error) {
	rows, err := q.db.Query(ctx, listRequestsByOffice, officeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

const listRequestsByMaterial = requestSelect + `
WHERE r.material_id = $1
ORDER BY r.created_at DESC
`

func (q *Queries) ListRequestsByMaterial(ctx context.Context, materialID int64) ([]Request, error) {
	rows, err := q.db.Query(ctx, listRequestsByMaterial, materialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

const getRequestByID = requestSelect + `
WHERE r.id = $1
`

func (q *Queries) GetRequestByID(ctx context.Context, id int64) (Request, error) {
	var r Request
	err := scanRequest(q.db.QueryRow(ctx, getRequestByID, id), &r)
	return r, err
}

const getRequestByIDForUpdate = requestSelect + `
WHERE r.id = $1
FOR UPDATE OF r
`

// GetRequestByIDForUpdate locks the request row so concurrent approvals
// serialize on it.
func (q *Queries) GetRequestByIDForUpdate(ctx context.Context, id int64) (Request, error) {
	var r Request
	err := scanRequest(q.db.QueryRow(ctx, getRequestByIDForUpdate, id), &r)
	return r, err
}

const sumOfficeMonthQuantity = `
SELECT COALESCE(SUM(quantity), 0)
FROM requests
WHERE office_id = $1
  AND state_id <> $2
  AND created_at >= date_trunc('month', now())
`

// SumOfficeMonthQuantity totals the units an office has requested in the
// current calendar month, excluding rejected requests.
func (q *Queries) SumOfficeMonthQuantity(ctx context.Context, officeID int64) (int64, error) {
	var total int64
	err := q.db.QueryRow(ctx, sumOfficeMonthQuantity, officeID, RequestStateRejected).Scan(&total)
	return total, err
}

type CreateRequestParams struct {
	OfficeID         int64
	MaterialID       int64
	Quantity         int32
	OfficePercentage decimal.Decimal
	RequesterName    string
	Observation      string
	TotalValue       decimal.Decimal
	OfficeValue      decimal.Decimal
	MainOfficeValue  decimal.Decimal
}

const createRequest = `
INSERT INTO requests (office_id, material_id, quantity, office_percentage, state_id,
                      requester_name, observation, total_value, office_value, main_office_value)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id
`

func (q *Queries) CreateRequest(ctx context.Context, arg CreateRequestParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, createRequest,
		arg.OfficeID, arg.MaterialID, arg.Quantity, arg.OfficePercentage, RequestStatePending,
		arg.RequesterName, arg.Observation, arg.TotalValue, arg.OfficeValue, arg.MainOfficeValue,
	).Scan(&id)
	return id, err
}

type ResolveRequestParams struct {
	ID         int64
	StateID    int16
	ResolvedBy int64
}

const resolveRequest = `
UPDATE requests
SET state_id = $2, resolved_by = $3, resolved_at = now()
WHERE id = $1 AND state_id = $4
`

// ResolveRequest moves a pending request into a terminal state. It returns
// ErrNotPending when the row is no longer pending.
func (q *Queries) ResolveRequest(ctx context.Context, arg ResolveRequestParams) error {
	tag, err := q.db.Exec(ctx, resolveRequest, arg.ID, arg.StateID, arg.ResolvedBy, RequestStatePending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

const appendRequestObservation = `
UPDATE requests SET observation = observation || $2 WHERE id = $1
`

func (q *Queries) AppendRequestObservation(ctx context.Context, id int64, suffix string) error {
	_, err := q.db.Exec(ctx, appendRequestObservation, id, suffix)
	return err
}

type CreateDeliveryParams struct {
	RequestID   int64
	Quantity    int32
	DeliveredBy string
	Note        string
}

const createDelivery = `
INSERT INTO request_deliveries (request_id, quantity, delivered_by, note)
VALUES ($1, $2, $3, $4)
RETURNING id
`

func (q *Queries) CreateDelivery(ctx context.Context, arg CreateDeliveryParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, createDelivery,
		arg.RequestID, arg.Quantity, arg.DeliveredBy, arg.Note,
	).Scan(&id)
	return id, err
}

const listDeliveriesByRequest = `
SELECT id, request_id, quantity, delivered_by, note, delivered_at
FROM request_deliveries
WHERE request_id = $1
ORDER BY delivered_at
`

func (q *Queries) ListDeliveriesByRequest(ctx context.Context, requestID int64) ([]RequestDelivery, error) {
	rows, err := q.db.Query(ctx, listDeliveriesByRequest, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []RequestDelivery
	for rows.Next() {
		var d RequestDelivery
		if err := rows.Scan(&d.ID, &d.RequestID, &d.Quantity, &d.DeliveredBy, &d.Note, &d.DeliveredAt); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

type RequestStatusCount struct {
	StateID int16
	Count   int64
}

const countRequestsByState = `
SELECT state_id, COUNT(*)
FROM requests
WHERE ($1::bigint = 0 OR office_id = $1)
GROUP BY state_id
`

// CountRequestsByState aggregates request counts per state. Pass officeID 0
// for an unscoped count.
func (q *Queries) CountRequestsByState(ctx context.Context, officeID int64) ([]RequestStatusCount, error) {
	rows, err := q.db.Query(ctx, countRequestsByState, officeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []RequestStatusCount
	for rows.Next() {
		var c RequestStatusCount
		if err := rows.Scan(&c.StateID, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

type ListRequestsByMonthParams struct {
	OfficeID int64
	From     time.Time
	To       time.Time
}

const listRequestsByPeriod = requestSelect + `
WHERE ($1::bigint = 0 OR r.office_id = $1)
  AND r.created_at >= $2 AND r.created_at < $3
ORDER BY r.created_at DESC
`

func (q *Queries) ListRequestsByPeriod(ctx context.Context, arg ListRequestsByMonthParams) ([]Request, error) {
	rows, err := q.db.Query(ctx, listRequestsByPeriod, arg.OfficeID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func scanRequests(rows pgx.Rows) ([]Request, error) {
	var requests []Request
	for rows.Next() {
		var r Request
		if err := rows.Scan(
			&r.ID, &r.OfficeID, &r.OfficeName, &r.MaterialID, &r.MaterialName, &r.Quantity,
			&r.OfficePercentage, &r.StateID, &r.StateName, &r.RequesterName, &r.Observation,
			&r.TotalValue, &r.OfficeValue, &r.MainOfficeValue,
			&r.UnitValue, &r.AvailableStock,
			&r.ResolvedBy, &r.ResolvedAt, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}
