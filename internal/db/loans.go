package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const loanSelect = `
SELECT l.id, l.element_id, e.name, l.requester_id, u.display_name,
       l.office_id, o.name, l.quantity, l.loaned_at, l.expected_return_date,
       l.actual_return_date, l.state, l.event, l.observations,
       l.lender_name, l.returned_by, l.active
FROM loans l
JOIN elements e ON e.id = l.element_id
JOIN users u ON u.id = l.requester_id
JOIN offices o ON o.id = l.office_id
`

func scanLoan(row pgx.Row, l *Loan) error {
	return row.Scan(
		&l.ID, &l.ElementID, &l.ElementName, &l.RequesterID, &l.RequesterName,
		&l.OfficeID, &l.OfficeName, &l.Quantity, &l.LoanedAt, &l.ExpectedReturnDate,
		&l.ActualReturnDate, &l.State, &l.Event, &l.Observations,
		&l.LenderName, &l.ReturnedBy, &l.Active,
	)
}

const listLoans = loanSelect + `
WHERE l.active
ORDER BY l.loaned_at DESC
`

func (q *Queries) ListLoans(ctx context.Context) ([]Loan, error) {
	rows, err := q.db.Query(ctx, listLoans)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLoans(rows)
}

const listLoansByOffice = loanSelect + `
WHERE l.active AND l.office_id = $1
ORDER BY l.loaned_at DESC
`

func (q *Queries) ListLoansByOffice(ctx context.Context, officeID int64) ([]Loan, error) {
	rows, err := q.db.Query(ctx, listLoansByOffice, officeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLoans(rows)
}

const getLoanByID = loanSelect + `
WHERE l.id = $1 AND l.active
`

func (q *Queries) GetLoanByID(ctx context.Context, id int64) (Loan, error) {
	var l Loan
	err := scanLoan(q.db.QueryRow(ctx, getLoanByID, id), &l)
	return l, err
}

const getLoanByIDForUpdate = loanSelect + `
WHERE l.id = $1 AND l.active
FOR UPDATE OF l
`

// GetLoanByIDForUpdate locks the loan row so concurrent state transitions
// serialize on it.
func (q *Queries) GetLoanByIDForUpdate(ctx context.Context, id int64) (Loan, error) {
	var l Loan
	err := scanLoan(q.db.QueryRow(ctx, getLoanByIDForUpdate, id), &l)
	return l, err
}

type CreateLoanParams struct {
	ElementID          int64
	RequesterID        int64
	OfficeID           int64
	Quantity           int32
	ExpectedReturnDate time.Time
	Event              string
	Observations       string
	LenderName         string
}

const createLoan = `
INSERT INTO loans (element_id, requester_id, office_id, quantity,
                   expected_return_date, event, observations, lender_name)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id
`

func (q *Queries) CreateLoan(ctx context.Context, arg CreateLoanParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, createLoan,
		arg.ElementID, arg.RequesterID, arg.OfficeID, arg.Quantity,
		arg.ExpectedReturnDate, arg.Event, arg.Observations, arg.LenderName,
	).Scan(&id)
	return id, err
}

type TransitionLoanParams struct {
	ID        int64
	FromState string
	ToState   string
}

const transitionLoan = `
UPDATE loans SET state = $3 WHERE id = $1 AND state = $2 AND active
`

// TransitionLoan moves a loan from one state to another. It returns
// ErrNotPending when the loan already left FromState.
func (q *Queries) TransitionLoan(ctx context.Context, arg TransitionLoanParams) error {
	tag, err := q.db.Exec(ctx, transitionLoan, arg.ID, arg.FromState, arg.ToState)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

const updateLoanQuantity = `
UPDATE loans SET quantity = $2 WHERE id = $1 AND active
`

func (q *Queries) UpdateLoanQuantity(ctx context.Context, id int64, quantity int32) error {
	_, err := q.db.Exec(ctx, updateLoanQuantity, id, quantity)
	return err
}

const appendLoanObservations = `
UPDATE loans SET observations = observations || $2 WHERE id = $1
`

func (q *Queries) AppendLoanObservations(ctx context.Context, id int64, suffix string) error {
	_, err := q.db.Exec(ctx, appendLoanObservations, id, suffix)
	return err
}

const markLoanReturned = `
UPDATE loans
SET state = $4, actual_return_date = now(), returned_by = $2
WHERE id = $1 AND state = ANY($3) AND active
`

// MarkLoanReturned closes out an approved loan. Only approved or partially
// approved loans can be returned.
func (q *Queries) MarkLoanReturned(ctx context.Context, id int64, returnedBy string) error {
	tag, err := q.db.Exec(ctx, markLoanReturned, id, returnedBy,
		[]string{LoanStateApproved, LoanStatePartialApproved}, LoanStateReturned)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

const listOverdueLoans = loanSelect + `
WHERE l.active
  AND l.state IN ($1, $2)
  AND l.expected_return_date < CURRENT_DATE
ORDER BY l.expected_return_date
`

// ListOverdueLoans returns approved loans past their expected return date.
func (q *Queries) ListOverdueLoans(ctx context.Context) ([]Loan, error) {
	rows, err := q.db.Query(ctx, listOverdueLoans, LoanStateApproved, LoanStatePartialApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLoans(rows)
}

const listElements = `
SELECT id, name, unit_value, available_quantity, image_path, active, created_at
FROM elements
WHERE active
ORDER BY name
`

func (q *Queries) ListElements(ctx context.Context) ([]Element, error) {
	rows, err := q.db.Query(ctx, listElements)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var elements []Element
	for rows.Next() {
		var e Element
		if err := rows.Scan(&e.ID, &e.Name, &e.UnitValue, &e.AvailableQuantity, &e.ImagePath, &e.Active, &e.CreatedAt); err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	return elements, rows.Err()
}

const getElementByIDForUpdate = `
SELECT id, name, unit_value, available_quantity, image_path, active, created_at
FROM elements
WHERE id = $1 AND active
FOR UPDATE
`

func (q *Queries) GetElementByIDForUpdate(ctx context.Context, id int64) (Element, error) {
	var e Element
	err := q.db.QueryRow(ctx, getElementByIDForUpdate, id).Scan(
		&e.ID, &e.Name, &e.UnitValue, &e.AvailableQuantity, &e.ImagePath, &e.Active, &e.CreatedAt,
	)
	return e, err
}

type CreateElementParams struct {
	Name              string
	UnitValue         decimal.Decimal
	AvailableQuantity int32
	ImagePath         *string
}

const createElement = `
INSERT INTO elements (name, unit_value, available_quantity, image_path)
VALUES ($1, $2, $3, $4)
RETURNING id
`

func (q *Queries) CreateElement(ctx context.Context, arg CreateElementParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, createElement,
		arg.Name, arg.UnitValue, arg.AvailableQuantity, arg.ImagePath,
	).Scan(&id)
	return id, err
}

const decrementElementStock = `
UPDATE elements
SET available_quantity = available_quantity - $2
WHERE id = $1 AND available_quantity >= $2
`

func (q *Queries) DecrementElementStock(ctx context.Context, id int64, quantity int32) error {
	tag, err := q.db.Exec(ctx, decrementElementStock, id, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}

const incrementElementStock = `
UPDATE elements SET available_quantity = available_quantity + $2 WHERE id = $1
`

func (q *Queries) IncrementElementStock(ctx context.Context, id int64, quantity int32) error {
	_, err := q.db.Exec(ctx, incrementElementStock, id, quantity)
	return err
}

func scanLoans(rows pgx.Rows) ([]Loan, error) {
	var loans []Loan
	for rows.Next() {
		var l Loan
		if err := rows.Scan(
			&l.ID, &l.ElementID, &l.ElementName, &l.RequesterID, &l.RequesterName,
			&l.OfficeID, &l.OfficeName, &l.Quantity, &l.LoanedAt, &l.ExpectedReturnDate,
			&l.ActualReturnDate, &l.State, &l.Event, &l.Observations,
			&l.LenderName, &l.ReturnedBy, &l.Active,
		); err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}
