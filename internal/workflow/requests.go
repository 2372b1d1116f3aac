package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sigainv/siga-backend/internal/auth"
	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/logging"
	"github.com/sigainv/siga-backend/internal/rbac"
)

// MonthlyQuotaUnits is the per-office cap on requested units in a calendar
// month.
const MonthlyQuotaUnits = 1000

// MinObservationLength is the shortest accepted request observation.
const MinObservationLength = 15

// Validation failures surfaced to the API layer.
var (
	ErrObservationTooShort = errors.New("observation must be at least 15 characters")
	ErrInvalidPercentage   = errors.New("office percentage must be between 1 and 100")
	ErrInvalidQuantity     = errors.New("quantity must be a positive integer")
	ErrOfficeNotVisible    = errors.New("office not visible to this user")
	ErrRequestNotFound     = errors.New("request not found")
)

// Notifier receives post-commit events the workflow wants acted on outside
// the transaction.
type Notifier interface {
	NotifyLowStock(ctx context.Context, material db.Material) error
}

// RequestService runs the material request lifecycle.
type RequestService struct {
	pool     *pgxpool.Pool
	queries  *db.Queries
	notifier Notifier
}

func NewRequestService(pool *pgxpool.Pool, queries *db.Queries, notifier Notifier) *RequestService {
	return &RequestService{pool: pool, queries: queries, notifier: notifier}
}

type CreateRequestInput struct {
	OfficeID         int64
	MaterialID       int64
	Quantity         int32
	OfficePercentage decimal.Decimal
	Observation      string
}

// Create validates and records a new pending request. Stock and quota are
// checked under a row lock so concurrent submissions cannot overshoot.
func (s *RequestService) Create(ctx context.Context, sess auth.Session, in CreateRequestInput) (db.Request, error) {
	if len(strings.TrimSpace(in.Observation)) < MinObservationLength {
		return db.Request{}, ErrObservationTooShort
	}
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	if in.OfficePercentage.LessThan(one) || in.OfficePercentage.GreaterThan(hundred) {
		return db.Request{}, ErrInvalidPercentage
	}
	if in.Quantity <= 0 {
		return db.Request{}, ErrInvalidQuantity
	}

	scope := rbac.NewScope(sess.Role, sess.OfficeID)
	if !scope.CanAccessOffice(in.OfficeID) {
		return db.Request{}, ErrOfficeNotVisible
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return db.Request{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	material, err := qtx.GetMaterialByIDForUpdate(ctx, in.MaterialID)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Request{}, db.ErrNotFound
	}
	if err != nil {
		return db.Request{}, fmt.Errorf("locking material: %w", err)
	}
	if material.AvailableQuantity < in.Quantity {
		return db.Request{}, db.ErrInsufficientStock
	}

	used, err := qtx.SumOfficeMonthQuantity(ctx, in.OfficeID)
	if err != nil {
		return db.Request{}, fmt.Errorf("summing monthly usage: %w", err)
	}
	if used+int64(in.Quantity) > MonthlyQuotaUnits {
		return db.Request{}, db.ErrMonthlyQuotaExceeded
	}

	total := material.UnitValue.Mul(decimal.NewFromInt32(in.Quantity))
	officeShare := total.Mul(in.OfficePercentage).Div(decimal.NewFromInt(100))
	mainShare := total.Sub(officeShare)

	id, err := qtx.CreateRequest(ctx, db.CreateRequestParams{
		OfficeID:         in.OfficeID,
		MaterialID:       in.MaterialID,
		Quantity:         in.Quantity,
		OfficePercentage: in.OfficePercentage,
		RequesterName:    sess.DisplayName,
		Observation:      strings.TrimSpace(in.Observation),
		TotalValue:       total,
		OfficeValue:      officeShare,
		MainOfficeValue:  mainShare,
	})
	if err != nil {
		return db.Request{}, fmt.Errorf("inserting request: %w", db.TranslateStoreError(err))
	}

	created, err := qtx.GetRequestByID(ctx, id)
	if err != nil {
		return db.Request{}, fmt.Errorf("reloading request: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return db.Request{}, fmt.Errorf("committing request: %w", err)
	}

	logging.Info("request created",
		slog.Int64("request_id", created.ID),
		slog.Int64("office_id", created.OfficeID),
		slog.Int("quantity", int(created.Quantity)),
		slog.String("requester", sess.Username))
	return created, nil
}

// Approve transitions a pending request to approved, debits material stock
// and records the full delivery.
func (s *RequestService) Approve(ctx context.Context, sess auth.Session, id int64) (db.Request, error) {
	return s.resolve(ctx, sess, id, resolveApprove, 0, "")
}

// ApprovePartial approves a request for fewer units than asked. The delta is
// noted on the delivery record and only the delivered units leave stock.
func (s *RequestService) ApprovePartial(ctx context.Context, sess auth.Session, id int64, deliverQuantity int32) (db.Request, error) {
	if deliverQuantity <= 0 {
		return db.Request{}, ErrInvalidQuantity
	}
	return s.resolve(ctx, sess, id, resolvePartial, deliverQuantity, "")
}

// Reject closes a pending request without touching stock. The reason is
// appended to the observation trail.
func (s *RequestService) Reject(ctx context.Context, sess auth.Session, id int64, reason string) (db.Request, error) {
	return s.resolve(ctx, sess, id, resolveReject, 0, reason)
}

type resolveKind int

const (
	resolveApprove resolveKind = iota
	resolvePartial
	resolveReject
)

func (s *RequestService) resolve(ctx context.Context, sess auth.Session, id int64, kind resolveKind, deliverQuantity int32, reason string) (db.Request, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return db.Request{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	req, err := qtx.GetRequestByIDForUpdate(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Request{}, ErrRequestNotFound
	}
	if err != nil {
		return db.Request{}, fmt.Errorf("locking request: %w", err)
	}
	if req.StateID != db.RequestStatePending {
		return db.Request{}, db.ErrNotPending
	}
	if !rbac.NewScope(sess.Role, sess.OfficeID).CanAccessOffice(req.OfficeID) {
		return db.Request{}, ErrOfficeNotVisible
	}

	var lowStockMaterial *db.Material

	switch kind {
	case resolveApprove, resolvePartial:
		quantity := req.Quantity
		stateID := db.RequestStateApproved
		note := ""
		if kind == resolvePartial {
			if deliverQuantity >= req.Quantity {
				return db.Request{}, ErrInvalidQuantity
			}
			quantity = deliverQuantity
			stateID = db.RequestStatePartialApproved
			note = fmt.Sprintf("Entrega parcial: %d de %d solicitadas", deliverQuantity, req.Quantity)
		}

		material, err := qtx.GetMaterialByIDForUpdate(ctx, req.MaterialID)
		if err != nil {
			return db.Request{}, fmt.Errorf("locking material: %w", err)
		}
		if material.AvailableQuantity < quantity {
			return db.Request{}, db.ErrInsufficientStock
		}
		if err := qtx.DecrementMaterialStock(ctx, material.ID, quantity); err != nil {
			return db.Request{}, db.TranslateStoreError(err)
		}
		if err := qtx.ResolveRequest(ctx, db.ResolveRequestParams{ID: id, StateID: stateID, ResolvedBy: sess.UserID}); err != nil {
			return db.Request{}, err
		}
		if _, err := qtx.CreateDelivery(ctx, db.CreateDeliveryParams{
			RequestID:   id,
			Quantity:    quantity,
			DeliveredBy: sess.DisplayName,
			Note:        note,
		}); err != nil {
			return db.Request{}, fmt.Errorf("recording delivery: %w", err)
		}

		if material.AvailableQuantity-quantity <= material.MinimumQuantity {
			m := material
			m.AvailableQuantity -= quantity
			lowStockMaterial = &m
		}

	case resolveReject:
		if err := qtx.ResolveRequest(ctx, db.ResolveRequestParams{ID: id, StateID: db.RequestStateRejected, ResolvedBy: sess.UserID}); err != nil {
			return db.Request{}, err
		}
		if reason = strings.TrimSpace(reason); reason != "" {
			if err := qtx.AppendRequestObservation(ctx, id, " | Rechazo: "+reason); err != nil {
				return db.Request{}, fmt.Errorf("appending rejection reason: %w", err)
			}
		}
	}

	resolved, err := qtx.GetRequestByID(ctx, id)
	if err != nil {
		return db.Request{}, fmt.Errorf("reloading request: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return db.Request{}, fmt.Errorf("committing resolution: %w", err)
	}

	logging.Info("request resolved",
		slog.Int64("request_id", id),
		slog.Int("state_id", int(resolved.StateID)),
		slog.String("resolved_by", sess.Username))

	if lowStockMaterial != nil && s.notifier != nil {
		if err := s.notifier.NotifyLowStock(ctx, *lowStockMaterial); err != nil {
			logging.Warn("low stock notification failed",
				slog.Int64("material_id", lowStockMaterial.ID),
				slog.String("error", err.Error()))
		}
	}
	return resolved, nil
}

// ListForSession returns the requests visible to the session's office scope.
func (s *RequestService) ListForSession(ctx context.Context, sess auth.Session) ([]db.Request, error) {
	if rbac.CanViewAll(sess.Role) {
		return s.queries.ListRequests(ctx)
	}
	return s.queries.ListRequestsByOffice(ctx, sess.OfficeID)
}

// Get returns a single request if the session may see it.
func (s *RequestService) Get(ctx context.Context, sess auth.Session, id int64) (db.Request, error) {
	req, err := s.queries.GetRequestByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Request{}, ErrRequestNotFound
	}
	if err != nil {
		return db.Request{}, err
	}
	scope := rbac.NewScope(sess.Role, sess.OfficeID)
	if !scope.CanAccessOffice(req.OfficeID) {
		return db.Request{}, ErrRequestNotFound
	}
	return req, nil
}
