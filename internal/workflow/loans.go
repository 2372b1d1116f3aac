package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sigainv/siga-backend/internal/auth"
	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/logging"
	"github.com/sigainv/siga-backend/internal/rbac"
)

var (
	ErrLoanNotFound      = errors.New("loan not found")
	ErrLoanNotPending    = errors.New("loan is not pending")
	ErrLoanNotReturnable = errors.New("loan is not in a returnable state")
	ErrPastReturnDate    = errors.New("expected return date is in the past")
	ErrReasonRequired    = errors.New("a rejection reason is required")
)

// LoanService runs the element loan lifecycle.
type LoanService struct {
	pool    *pgxpool.Pool
	queries *db.Queries
}

func NewLoanService(pool *pgxpool.Pool, queries *db.Queries) *LoanService {
	return &LoanService{pool: pool, queries: queries}
}

// DateOnly strips the time of day, keeping t's calendar date. Due dates
// compare by calendar day in the caller's zone, not by instant.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type CreateLoanInput struct {
	ElementID          int64
	Quantity           int32
	ExpectedReturnDate time.Time
	Event              string
	Observations       string
}

// Create registers a new loan in PRESTADO and debits the element stock for
// the loaned quantity. Rejection or return restores it.
func (s *LoanService) Create(ctx context.Context, sess auth.Session, in CreateLoanInput) (db.Loan, error) {
	if in.Quantity <= 0 {
		return db.Loan{}, ErrInvalidQuantity
	}
	if strings.TrimSpace(in.Event) == "" {
		return db.Loan{}, errors.New("event is required")
	}
	if DateOnly(in.ExpectedReturnDate).Before(DateOnly(time.Now())) {
		return db.Loan{}, ErrPastReturnDate
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return db.Loan{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	element, err := qtx.GetElementByIDForUpdate(ctx, in.ElementID)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Loan{}, db.ErrNotFound
	}
	if err != nil {
		return db.Loan{}, fmt.Errorf("locking element: %w", err)
	}
	if element.AvailableQuantity < in.Quantity {
		return db.Loan{}, db.ErrInsufficientStock
	}
	if err := qtx.DecrementElementStock(ctx, element.ID, in.Quantity); err != nil {
		return db.Loan{}, db.TranslateStoreError(err)
	}

	id, err := qtx.CreateLoan(ctx, db.CreateLoanParams{
		ElementID:          in.ElementID,
		RequesterID:        sess.UserID,
		OfficeID:           sess.OfficeID,
		Quantity:           in.Quantity,
		ExpectedReturnDate: in.ExpectedReturnDate,
		Event:              strings.TrimSpace(in.Event),
		Observations:       strings.TrimSpace(in.Observations),
		LenderName:         sess.DisplayName,
	})
	if err != nil {
		return db.Loan{}, fmt.Errorf("inserting loan: %w", err)
	}

	created, err := qtx.GetLoanByID(ctx, id)
	if err != nil {
		return db.Loan{}, fmt.Errorf("reloading loan: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return db.Loan{}, fmt.Errorf("committing loan: %w", err)
	}

	logging.Info("loan created",
		slog.Int64("loan_id", created.ID),
		slog.Int64("element_id", created.ElementID),
		slog.String("requester", sess.Username))
	return created, nil
}

// Approve confirms a PRESTADO loan. Stock already left when the loan was
// created, so this only moves the state.
func (s *LoanService) Approve(ctx context.Context, sess auth.Session, id int64) (db.Loan, error) {
	return s.decide(ctx, sess, id, db.LoanStateApproved, 0, "")
}

// ApprovePartial approves fewer units than asked. The loan quantity is
// rewritten to the delivered amount and the difference goes back to stock.
func (s *LoanService) ApprovePartial(ctx context.Context, sess auth.Session, id int64, quantity int32) (db.Loan, error) {
	if quantity <= 0 {
		return db.Loan{}, ErrInvalidQuantity
	}
	return s.decide(ctx, sess, id, db.LoanStatePartialApproved, quantity, "")
}

// Reject closes a PRESTADO loan, restores the full loaned quantity to stock
// and appends the reason to the observation trail.
func (s *LoanService) Reject(ctx context.Context, sess auth.Session, id int64, reason string) (db.Loan, error) {
	if strings.TrimSpace(reason) == "" {
		return db.Loan{}, ErrReasonRequired
	}
	return s.decide(ctx, sess, id, db.LoanStateRejected, 0, reason)
}

func (s *LoanService) decide(ctx context.Context, sess auth.Session, id int64, toState string, partialQuantity int32, reason string) (db.Loan, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return db.Loan{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	loan, err := qtx.GetLoanByIDForUpdate(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Loan{}, ErrLoanNotFound
	}
	if err != nil {
		return db.Loan{}, fmt.Errorf("locking loan: %w", err)
	}
	if loan.State != db.LoanStateLoaned {
		return db.Loan{}, ErrLoanNotPending
	}

	switch toState {
	case db.LoanStateApproved:
		if err := qtx.TransitionLoan(ctx, db.TransitionLoanParams{ID: id, FromState: db.LoanStateLoaned, ToState: db.LoanStateApproved}); err != nil {
			return db.Loan{}, err
		}

	case db.LoanStatePartialApproved:
		if partialQuantity >= loan.Quantity {
			return db.Loan{}, ErrInvalidQuantity
		}
		if err := qtx.IncrementElementStock(ctx, loan.ElementID, loan.Quantity-partialQuantity); err != nil {
			return db.Loan{}, fmt.Errorf("restoring undelivered stock: %w", err)
		}
		if err := qtx.UpdateLoanQuantity(ctx, id, partialQuantity); err != nil {
			return db.Loan{}, fmt.Errorf("updating loan quantity: %w", err)
		}
		suffix := fmt.Sprintf(" | Aprobación parcial: %d de %d solicitadas", partialQuantity, loan.Quantity)
		if err := qtx.AppendLoanObservations(ctx, id, suffix); err != nil {
			return db.Loan{}, fmt.Errorf("appending observation: %w", err)
		}
		if err := qtx.TransitionLoan(ctx, db.TransitionLoanParams{ID: id, FromState: db.LoanStateLoaned, ToState: db.LoanStatePartialApproved}); err != nil {
			return db.Loan{}, err
		}

	case db.LoanStateRejected:
		if err := qtx.IncrementElementStock(ctx, loan.ElementID, loan.Quantity); err != nil {
			return db.Loan{}, fmt.Errorf("restoring stock: %w", err)
		}
		if err := qtx.TransitionLoan(ctx, db.TransitionLoanParams{ID: id, FromState: db.LoanStateLoaned, ToState: db.LoanStateRejected}); err != nil {
			return db.Loan{}, err
		}
		if err := qtx.AppendLoanObservations(ctx, id, " | Rechazo: "+strings.TrimSpace(reason)); err != nil {
			return db.Loan{}, fmt.Errorf("appending rejection reason: %w", err)
		}
	}

	decided, err := qtx.GetLoanByID(ctx, id)
	if err != nil {
		return db.Loan{}, fmt.Errorf("reloading loan: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return db.Loan{}, fmt.Errorf("committing decision: %w", err)
	}

	logging.Info("loan decided",
		slog.Int64("loan_id", id),
		slog.String("state", decided.State),
		slog.String("decided_by", sess.Username))
	return decided, nil
}

// RegisterReturn closes an approved loan and restores the borrowed units to
// element stock.
func (s *LoanService) RegisterReturn(ctx context.Context, sess auth.Session, id int64, note string) (db.Loan, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return db.Loan{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	loan, err := qtx.GetLoanByIDForUpdate(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Loan{}, ErrLoanNotFound
	}
	if err != nil {
		return db.Loan{}, fmt.Errorf("locking loan: %w", err)
	}
	if loan.State != db.LoanStateApproved && loan.State != db.LoanStatePartialApproved {
		return db.Loan{}, ErrLoanNotReturnable
	}

	if err := qtx.MarkLoanReturned(ctx, id, sess.DisplayName); err != nil {
		return db.Loan{}, err
	}
	if err := qtx.IncrementElementStock(ctx, loan.ElementID, loan.Quantity); err != nil {
		return db.Loan{}, fmt.Errorf("restoring stock: %w", err)
	}

	suffix := fmt.Sprintf(" | Devolución [%s]", sess.DisplayName)
	if note = strings.TrimSpace(note); note != "" {
		suffix += ": " + note
	}
	if err := qtx.AppendLoanObservations(ctx, id, suffix); err != nil {
		return db.Loan{}, fmt.Errorf("appending return note: %w", err)
	}

	returned, err := qtx.GetLoanByID(ctx, id)
	if err != nil {
		return db.Loan{}, fmt.Errorf("reloading loan: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return db.Loan{}, fmt.Errorf("committing return: %w", err)
	}

	logging.Info("loan returned",
		slog.Int64("loan_id", id),
		slog.String("returned_by", sess.Username))
	return returned, nil
}

// ListForSession returns the loans visible to the session's office scope.
func (s *LoanService) ListForSession(ctx context.Context, sess auth.Session) ([]db.Loan, error) {
	if rbac.CanViewAll(sess.Role) {
		return s.queries.ListLoans(ctx)
	}
	return s.queries.ListLoansByOffice(ctx, sess.OfficeID)
}
