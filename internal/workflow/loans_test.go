package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/rbac"
	"github.com/sigainv/siga-backend/internal/testutil"
	"github.com/sigainv/siga-backend/internal/workflow"
)

func newLoanService(tdb *testutil.TestDatabase) *workflow.LoanService {
	return workflow.NewLoanService(tdb.Pool(), tdb.Queries())
}

func TestLoanCreate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	ctx := context.Background()

	t.Run("creates a loan in PRESTADO and debits element stock", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		svc := newLoanService(tdb)

		office := tdb.NewOffice(t).WithName("CALI").Create()
		user := tdb.NewUser(t).WithRole(rbac.RoleOfficeCali).InOffice(office.ID).Create()
		element := tdb.NewElement(t).WithStock(10).Create()

		loan, err := svc.Create(ctx, sessionFor(user), workflow.CreateLoanInput{
			ElementID:          element.ID,
			Quantity:           3,
			ExpectedReturnDate: time.Now().AddDate(0, 0, 7),
			Event:              "Feria de vivienda",
		})
		require.NoError(t, err)

		assert.Equal(t, db.LoanStateLoaned, loan.State)
		assert.Equal(t, office.ID, loan.OfficeID)

		elements, err := tdb.Queries().ListElements(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(7), elements[0].AvailableQuantity)
	})

	t.Run("quantity above stock is rejected", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		svc := newLoanService(tdb)

		user := tdb.NewUser(t).WithRole(rbac.RoleInventoryLead).Create()
		element := tdb.NewElement(t).WithStock(2).Create()

		_, err := svc.Create(ctx, sessionFor(user), workflow.CreateLoanInput{
			ElementID:          element.ID,
			Quantity:           3,
			ExpectedReturnDate: time.Now().AddDate(0, 0, 7),
			Event:              "Feria",
		})
		assert.ErrorIs(t, err, db.ErrInsufficientStock)
	})

	t.Run("return date in the past is rejected", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		svc := newLoanService(tdb)

		user := tdb.NewUser(t).WithRole(rbac.RoleInventoryLead).Create()
		element := tdb.NewElement(t).Create()

		_, err := svc.Create(ctx, sessionFor(user), workflow.CreateLoanInput{
			ElementID:          element.ID,
			Quantity:           1,
			ExpectedReturnDate: time.Now().AddDate(0, 0, -2),
			Event:              "Feria",
		})
		assert.ErrorIs(t, err, workflow.ErrPastReturnDate)
	})

	t.Run("return date of today is accepted", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		svc := newLoanService(tdb)

		user := tdb.NewUser(t).WithRole(rbac.RoleInventoryLead).Create()
		element := tdb.NewElement(t).Create()

		_, err := svc.Create(ctx, sessionFor(user), workflow.CreateLoanInput{
			ElementID:          element.ID,
			Quantity:           1,
			ExpectedReturnDate: time.Now(),
			Event:              "Feria",
		})
		require.NoError(t, err)
	})
}

func TestDateOnly(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	evening := time.Date(2026, 8, 30, 21, 15, 0, 0, bogota)
	dueDate := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	// 21:15 in Bogotá is already the 31st in UTC, but a loan due on the
	// 30th is not past due until the local date rolls over.
	assert.False(t, workflow.DateOnly(dueDate).Before(workflow.DateOnly(evening)))
	assert.True(t, workflow.DateOnly(dueDate).Before(workflow.DateOnly(evening.AddDate(0, 0, 1))))
	assert.Equal(t, workflow.DateOnly(dueDate), workflow.DateOnly(evening))
}

func TestLoanLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	ctx := context.Background()

	setup := func(t *testing.T, stock, quantity int32) (*testutil.TestDatabase, *workflow.LoanService, db.Loan, db.User, db.Element) {
		tdb := getSharedTestDatabase(t)
		svc := newLoanService(tdb)

		office := tdb.NewOffice(t).WithName("CALI").Create()
		requester := tdb.NewUser(t).WithRole(rbac.RoleOfficeCali).InOffice(office.ID).Create()
		approver := tdb.NewUser(t).WithUsername("lider").WithRole(rbac.RoleInventoryLead).Create()
		element := tdb.NewElement(t).WithStock(stock).Create()
		loan := tdb.NewLoan(t).ForElement(element.ID).ByUser(requester).WithQuantity(quantity).Create()
		return tdb, svc, loan, approver, element
	}

	elementStock := func(t *testing.T, tdb *testutil.TestDatabase, id int64) int32 {
		t.Helper()
		elements, err := tdb.Queries().ListElements(ctx)
		require.NoError(t, err)
		for _, e := range elements {
			if e.ID == id {
				return e.AvailableQuantity
			}
		}
		t.Fatalf("element %d not found", id)
		return 0
	}

	t.Run("approve keeps the creation debit in place", func(t *testing.T) {
		tdb, svc, loan, approver, element := setup(t, 10, 3)
		require.Equal(t, int32(7), elementStock(t, tdb, element.ID))

		decided, err := svc.Approve(ctx, sessionFor(approver), loan.ID)
		require.NoError(t, err)
		assert.Equal(t, db.LoanStateApproved, decided.State)
		assert.Equal(t, int32(7), elementStock(t, tdb, element.ID))
	})

	t.Run("deciding twice fails", func(t *testing.T) {
		_, svc, loan, approver, _ := setup(t, 10, 3)

		_, err := svc.Approve(ctx, sessionFor(approver), loan.ID)
		require.NoError(t, err)
		_, err = svc.Approve(ctx, sessionFor(approver), loan.ID)
		assert.ErrorIs(t, err, workflow.ErrLoanNotPending)
		_, err = svc.Reject(ctx, sessionFor(approver), loan.ID, "tarde")
		assert.ErrorIs(t, err, workflow.ErrLoanNotPending)
	})

	t.Run("partial approve rewrites quantity and restores the difference", func(t *testing.T) {
		tdb, svc, loan, approver, element := setup(t, 10, 5)
		require.Equal(t, int32(5), elementStock(t, tdb, element.ID))

		decided, err := svc.ApprovePartial(ctx, sessionFor(approver), loan.ID, 2)
		require.NoError(t, err)

		assert.Equal(t, db.LoanStatePartialApproved, decided.State)
		assert.Equal(t, int32(2), decided.Quantity)
		assert.Contains(t, decided.Observations, "2 de 5")
		assert.Equal(t, int32(8), elementStock(t, tdb, element.ID))
	})

	t.Run("partial approve must be less than requested", func(t *testing.T) {
		_, svc, loan, approver, _ := setup(t, 10, 5)

		_, err := svc.ApprovePartial(ctx, sessionFor(approver), loan.ID, 5)
		assert.ErrorIs(t, err, workflow.ErrInvalidQuantity)
	})

	t.Run("reject restores the full quantity and appends the reason", func(t *testing.T) {
		tdb, svc, loan, approver, element := setup(t, 10, 3)
		require.Equal(t, int32(7), elementStock(t, tdb, element.ID))

		decided, err := svc.Reject(ctx, sessionFor(approver), loan.ID, "elemento reservado")
		require.NoError(t, err)

		assert.Equal(t, db.LoanStateRejected, decided.State)
		assert.Contains(t, decided.Observations, " | Rechazo: elemento reservado")
		assert.Equal(t, int32(10), elementStock(t, tdb, element.ID))
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		_, svc, loan, approver, _ := setup(t, 10, 3)

		_, err := svc.Reject(ctx, sessionFor(approver), loan.ID, "  ")
		assert.ErrorIs(t, err, workflow.ErrReasonRequired)
	})

	t.Run("return restores stock and records who received it", func(t *testing.T) {
		tdb, svc, loan, approver, element := setup(t, 10, 3)

		_, err := svc.Approve(ctx, sessionFor(approver), loan.ID)
		require.NoError(t, err)
		require.Equal(t, int32(7), elementStock(t, tdb, element.ID))

		returned, err := svc.RegisterReturn(ctx, sessionFor(approver), loan.ID, "todo en orden")
		require.NoError(t, err)

		assert.Equal(t, db.LoanStateReturned, returned.State)
		assert.NotNil(t, returned.ActualReturnDate)
		require.NotNil(t, returned.ReturnedBy)
		assert.Equal(t, approver.DisplayName, *returned.ReturnedBy)
		assert.Contains(t, returned.Observations, " | Devolución ["+approver.DisplayName+"]: todo en orden")
		assert.Equal(t, int32(10), elementStock(t, tdb, element.ID))
	})

	t.Run("partial return restores only the delivered quantity", func(t *testing.T) {
		tdb, svc, loan, approver, element := setup(t, 10, 5)

		_, err := svc.ApprovePartial(ctx, sessionFor(approver), loan.ID, 2)
		require.NoError(t, err)
		require.Equal(t, int32(8), elementStock(t, tdb, element.ID))

		_, err = svc.RegisterReturn(ctx, sessionFor(approver), loan.ID, "")
		require.NoError(t, err)
		assert.Equal(t, int32(10), elementStock(t, tdb, element.ID))
	})

	t.Run("only approved loans can be returned", func(t *testing.T) {
		_, svc, loan, approver, _ := setup(t, 10, 3)

		_, err := svc.RegisterReturn(ctx, sessionFor(approver), loan.ID, "")
		assert.ErrorIs(t, err, workflow.ErrLoanNotReturnable)

		_, err = svc.Reject(ctx, sessionFor(approver), loan.ID, "no disponible")
		require.NoError(t, err)
		_, err = svc.RegisterReturn(ctx, sessionFor(approver), loan.ID, "")
		assert.ErrorIs(t, err, workflow.ErrLoanNotReturnable)
	})
}
