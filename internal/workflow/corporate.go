package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sigainv/siga-backend/internal/auth"
	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/logging"
)

var ErrItemNotAssignable = errors.New("item is not assignable to offices")

// CorporateService assigns corporate inventory to offices.
type CorporateService struct {
	pool    *pgxpool.Pool
	queries *db.Queries
}

func NewCorporateService(pool *pgxpool.Pool, queries *db.Queries) *CorporateService {
	return &CorporateService{pool: pool, queries: queries}
}

type AssignInput struct {
	ItemID   int64
	OfficeID int64
	Quantity int32
}

// Assign moves corporate stock to an office under a row lock.
func (s *CorporateService) Assign(ctx context.Context, sess auth.Session, in AssignInput) (db.CorporateAssignment, error) {
	if in.Quantity <= 0 {
		return db.CorporateAssignment{}, ErrInvalidQuantity
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return db.CorporateAssignment{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	item, err := qtx.GetCorporateItemByIDForUpdate(ctx, in.ItemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.CorporateAssignment{}, db.ErrNotFound
	}
	if err != nil {
		return db.CorporateAssignment{}, fmt.Errorf("locking item: %w", err)
	}
	if !item.Assignable {
		return db.CorporateAssignment{}, ErrItemNotAssignable
	}
	if item.Quantity < in.Quantity {
		return db.CorporateAssignment{}, db.ErrInsufficientStock
	}

	office, err := qtx.GetOfficeByID(ctx, in.OfficeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.CorporateAssignment{}, db.ErrNotFound
	}
	if err != nil {
		return db.CorporateAssignment{}, fmt.Errorf("loading office: %w", err)
	}

	if err := qtx.DecrementCorporateStock(ctx, item.ID, in.Quantity); err != nil {
		return db.CorporateAssignment{}, err
	}
	id, err := qtx.CreateAssignment(ctx, db.CreateAssignmentParams{
		ItemID:     in.ItemID,
		OfficeID:   in.OfficeID,
		Quantity:   in.Quantity,
		AssignedBy: sess.DisplayName,
	})
	if err != nil {
		return db.CorporateAssignment{}, fmt.Errorf("inserting assignment: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return db.CorporateAssignment{}, fmt.Errorf("committing assignment: %w", err)
	}

	logging.Info("corporate stock assigned",
		slog.Int64("item_id", in.ItemID),
		slog.Int64("office_id", in.OfficeID),
		slog.Int("quantity", int(in.Quantity)),
		slog.String("assigned_by", sess.Username))

	return db.CorporateAssignment{
		ID:         id,
		ItemID:     in.ItemID,
		OfficeID:   in.OfficeID,
		OfficeName: office.Name,
		Quantity:   in.Quantity,
		AssignedBy: sess.DisplayName,
	}, nil
}
